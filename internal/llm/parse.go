package llm

import (
	"strings"
)

// ExtractJSON strips Markdown code fences and surrounding prose from a
// model reply, returning the JSON payload. Models routinely wrap JSON in
// ```json fences or prefix it with a sentence; callers should always run
// replies through this before unmarshaling.
func ExtractJSON(reply string) string {
	text := strings.TrimSpace(reply)

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Cut leading prose before the first bracket and trailing prose after
	// the matching close.
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return text
	}
	open := text[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}
