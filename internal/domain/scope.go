package domain

// AnalysisScope controls how aggressively drift detection selects candidate
// documents before invoking the classifier.
type AnalysisScope string

const (
	ScopeConservative AnalysisScope = "conservative"
	ScopeBalanced     AnalysisScope = "balanced"
	ScopeBroad        AnalysisScope = "broad"
	ScopeExhaustive   AnalysisScope = "exhaustive"
)

// ScopePolicy is the resolved selection policy for an analysis scope.
// Each scope maps to explicit numeric thresholds rather than being consulted
// by name throughout the selection code.
type ScopePolicy struct {
	// MinSensitivity is the code-sensitivity floor for the primary tier.
	MinSensitivity int
	// MinStaleness is the staleness-risk floor for the staleness tier.
	MinStaleness int
	// MaxCandidates caps how many documents are sent to the analyzer.
	MaxCandidates int
	// UseSemanticTier enables embedding-similarity scoring when entry
	// embeddings are available.
	UseSemanticTier bool
}

// ParseAnalysisScope parses a scope name, returning ErrInvalidScope for
// anything that is not a known scope.
func ParseAnalysisScope(s string) (AnalysisScope, error) {
	scope := AnalysisScope(s)
	switch scope {
	case ScopeConservative, ScopeBalanced, ScopeBroad, ScopeExhaustive:
		return scope, nil
	}
	return "", ErrInvalidScope
}

// PolicyForScope resolves a scope to its selection policy. Unknown scopes
// fall back to the balanced policy.
func PolicyForScope(scope AnalysisScope) ScopePolicy {
	switch scope {
	case ScopeConservative:
		return ScopePolicy{MinSensitivity: SensitivityHigh, MinStaleness: StalenessHigh, MaxCandidates: 3, UseSemanticTier: false}
	case ScopeBroad:
		return ScopePolicy{MinSensitivity: SensitivityLow, MinStaleness: StalenessMedium, MaxCandidates: 15, UseSemanticTier: true}
	case ScopeExhaustive:
		return ScopePolicy{MinSensitivity: SensitivityNone, MinStaleness: StalenessLow, MaxCandidates: 50, UseSemanticTier: true}
	default:
		return ScopePolicy{MinSensitivity: SensitivityMedium, MinStaleness: StalenessHigh, MaxCandidates: 8, UseSemanticTier: true}
	}
}
