package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"Bare", `{"a":1}`, `{"a":1}`},
		{"JSONFence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"PlainFence", "```\n[1,2,3]\n```", `[1,2,3]`},
		{"LeadingProse", "Here is the result:\n{\"a\":1}", `{"a":1}`},
		{"TrailingProse", "{\"a\":1}\nLet me know if you need more.", `{"a":1}`},
		{"ArrayWithProse", "Sure!\n```json\n[{\"path\":\"a.md\"}]\n```\nDone.", `[{"path":"a.md"}]`},
		{"Whitespace", "  \n {\"a\":1} \n ", `{"a":1}`},
		{"NoJSON", "I could not classify anything.", "I could not classify anything."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.reply))
		})
	}
}

func TestExtractJSONUnmarshalsCleanly(t *testing.T) {
	reply := "The classification follows.\n```json\n{\"files\": [{\"path\": \"docs/api.md\", \"sensitivity\": 3}]}\n```"

	var parsed struct {
		Files []struct {
			Path        string `json:"path"`
			Sensitivity int    `json:"sensitivity"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(ExtractJSON(reply)), &parsed))
	require.Len(t, parsed.Files, 1)
	assert.Equal(t, "docs/api.md", parsed.Files[0].Path)
	assert.Equal(t, 3, parsed.Files[0].Sensitivity)
}
