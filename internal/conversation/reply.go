package conversation

import (
	"encoding/json"
	"strings"

	"github.com/joestump/promptpad/internal/prompt"
)

var (
	structuredPrefix = prompt.OpenHeader(prompt.RoleUser)
	structuredSuffix = prompt.EndOfTurn
)

// WrapStructuredReply tags content as a complete user turn so it can be sent
// back to the model verbatim as a reply to a structured response.
func WrapStructuredReply(content string) string {
	return prompt.FormatMessage(prompt.RoleUser, content)
}

// UnwrapStructuredReply splits a pre-tagged user turn into the content shown
// in the conversation and the raw form handed to the encoder. ok is false
// when text is not pre-tagged.
func UnwrapStructuredReply(text string) (display, raw string, ok bool) {
	if len(text) < len(structuredPrefix)+len(structuredSuffix) ||
		!strings.HasPrefix(text, structuredPrefix) || !strings.HasSuffix(text, structuredSuffix) {
		return text, "", false
	}
	return text[len(structuredPrefix) : len(text)-len(structuredSuffix)], text, true
}

// IsStructured reports whether text parses as a JSON object or array.
func IsStructured(text string) bool {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return false
	}
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
