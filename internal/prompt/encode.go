package prompt

import "strings"

// Control tokens of the prompt wire format.
const (
	StartHeader = "<|start_header_id|>"
	EndHeader   = "<|end_header_id|>"
	EndOfTurn   = "<|eot_id|>"

	// ReasoningSuppression tells reasoning models to skip their private trace.
	ReasoningSuppression = "</think>"
)

// Request is the input to Encode.
type Request struct {
	// Instruction is the rendered template, placed ahead of the history.
	Instruction string
	// History ends with the current user turn.
	History []Message
	Model   Model
	// RawOverride, when non-empty, replaces the formatted current turn
	// verbatim. Structured replies arrive already tagged.
	RawOverride string
}

// FormatMessage wraps content in the header and end-of-turn tokens for role.
func FormatMessage(role Role, content string) string {
	return StartHeader + string(role) + EndHeader + content + EndOfTurn
}

// FormatHistory formats every message in order, one per line.
func FormatHistory(msgs []Message) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = FormatMessage(m.Role, m.Content)
	}
	return strings.Join(parts, "\n")
}

// OpenHeader is the header for role with no content and no end-of-turn token:
// the point where the model continues generating.
func OpenHeader(role Role) string {
	return StartHeader + string(role) + EndHeader
}

// Encode builds the prompt for the next assistant turn. The assistant header
// at the end is left open.
func Encode(req Request) string {
	var parts []string
	if len(req.History) == 0 {
		parts = []string{FormatMessage(RoleUser, req.Instruction)}
	} else {
		last := len(req.History) - 1
		parts = append(parts, req.Instruction)
		if last > 0 {
			parts = append(parts, FormatHistory(req.History[:last]))
		}
		current := req.RawOverride
		if current == "" {
			current = FormatMessage(req.History[last].Role, req.History[last].Content)
		}
		parts = append(parts, current)
	}
	parts = append(parts, OpenHeader(RoleAssistant))

	out := strings.Join(parts, "\n")
	if req.Model.SuppressReasoning {
		out += ReasoningSuppression
	}
	return out
}
