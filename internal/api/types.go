package api

import (
	"time"

	"github.com/joestump/promptpad/internal/prompt"
	"github.com/joestump/promptpad/internal/store"
)

// --- Playground types ---

// ValidateRequest is the request body for POST /api/v1/validate.
type ValidateRequest struct {
	JSON string `json:"json"`
}

// ValidateResponse reports whether the context text is a JSON object.
type ValidateResponse struct {
	Valid bool           `json:"valid"`
	Error string         `json:"error,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// SanitizeRequest is the request body for POST /api/v1/sanitize.
type SanitizeRequest struct {
	Template string `json:"template"`
}

// SanitizeResponse carries the template with unterminated comments closed.
type SanitizeResponse struct {
	Template string `json:"template"`
}

// RenderRequest is the request body for POST /api/v1/render. Context is the
// JSON text exactly as typed in the editor.
type RenderRequest struct {
	Template string `json:"template"`
	Context  string `json:"context"`
}

// RenderResponse holds either the rendered output or the context error.
// A template error is output: RenderFailed marks it.
type RenderResponse struct {
	Output       string `json:"output,omitempty"`
	Error        string `json:"error,omitempty"`
	RenderFailed bool   `json:"render_failed"`
}

// MessageInput is one conversation turn in an encode request.
type MessageInput struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content"`
}

// EncodeRequest is the request body for POST /api/v1/encode.
type EncodeRequest struct {
	Instruction string         `json:"instruction"`
	Messages    []MessageInput `json:"messages"`
	Model       string         `json:"model,omitempty"`
	RawOverride string         `json:"raw_override,omitempty"`
}

// EncodeResponse carries the linearized prompt.
type EncodeResponse struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

// ModelResponse is one selectable inference model.
type ModelResponse struct {
	ID                string `json:"id"`
	Label             string `json:"label"`
	SuppressReasoning bool   `json:"suppress_reasoning"`
	Default           bool   `json:"default"`
}

// ModelListResponse lists the model catalog in order.
type ModelListResponse struct {
	Models []ModelResponse `json:"models"`
}

// --- Conversation types ---

// ConversationResponse is the JSON representation of a conversation.
type ConversationResponse struct {
	ID       string           `json:"id"`
	State    string           `json:"state" example:"idle"`
	Messages []prompt.Message `json:"messages"`
}

// SendMessageRequest is the request body for POST /api/v1/conversations/{id}/messages.
type SendMessageRequest struct {
	Content string `json:"content"`
	// Instruction is the rendered template. When empty, Template and Context
	// are rendered to produce it.
	Instruction string `json:"instruction,omitempty"`
	Template    string `json:"template,omitempty"`
	Context     string `json:"context,omitempty"`
	Model       string `json:"model,omitempty"`
	// Structured sends Content as a reply to a structured response.
	Structured bool `json:"structured,omitempty"`
}

// SendMessageResponse carries the assistant turn and the whole conversation.
type SendMessageResponse struct {
	Reply        prompt.Message       `json:"reply"`
	Conversation ConversationResponse `json:"conversation"`
}

// --- Prompt library types ---

// PromptRequest is the request body for POST /api/v1/prompts.
type PromptRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// UpdatePromptRequest is the request body for PUT /api/v1/prompts/{id}.
// Omitted fields are left unchanged.
type UpdatePromptRequest struct {
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
}

// PromptResponse is the JSON representation of a library prompt.
type PromptResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PromptListResponse is the paginated response for GET /api/v1/prompts.
type PromptListResponse struct {
	Prompts    []PromptResponse `json:"prompts"`
	NextCursor *string          `json:"next_cursor"`
}

func toPromptResponse(p *store.Prompt) PromptResponse {
	return PromptResponse{
		ID:        p.ID,
		Name:      p.Name,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
