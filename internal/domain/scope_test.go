package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisScope(t *testing.T) {
	tests := []struct {
		input   string
		want    AnalysisScope
		wantErr bool
	}{
		{"conservative", ScopeConservative, false},
		{"balanced", ScopeBalanced, false},
		{"broad", ScopeBroad, false},
		{"exhaustive", ScopeExhaustive, false},
		{"everything", "", true},
		{"", "", true},
		{"Balanced", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			scope, err := ParseAnalysisScope(tt.input)
			if tt.wantErr {
				assert.Equal(t, ErrInvalidScope, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, scope)
		})
	}
}

func TestPolicyForScope(t *testing.T) {
	conservative := PolicyForScope(ScopeConservative)
	assert.Equal(t, SensitivityHigh, conservative.MinSensitivity)
	assert.False(t, conservative.UseSemanticTier)

	exhaustive := PolicyForScope(ScopeExhaustive)
	assert.Equal(t, SensitivityNone, exhaustive.MinSensitivity)
	assert.Equal(t, 50, exhaustive.MaxCandidates)

	// Scope policies must widen monotonically.
	scopes := []AnalysisScope{ScopeConservative, ScopeBalanced, ScopeBroad, ScopeExhaustive}
	for i := 1; i < len(scopes); i++ {
		prev := PolicyForScope(scopes[i-1])
		cur := PolicyForScope(scopes[i])
		assert.LessOrEqual(t, cur.MinSensitivity, prev.MinSensitivity, "scope %s", scopes[i])
		assert.GreaterOrEqual(t, cur.MaxCandidates, prev.MaxCandidates, "scope %s", scopes[i])
	}
}

func TestPolicyForScopeUnknownFallsBackToBalanced(t *testing.T) {
	assert.Equal(t, PolicyForScope(ScopeBalanced), PolicyForScope(AnalysisScope("bogus")))
}
