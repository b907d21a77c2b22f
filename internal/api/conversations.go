package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/promptpad/internal/conversation"
	"github.com/joestump/promptpad/internal/prompt"
	"github.com/joestump/promptpad/internal/render"
)

type conversationsAPIHandler struct {
	convs    *conversation.Registry
	renderer *render.Renderer
	catalog  *prompt.Catalog
}

func registerConversationRoutes(r chi.Router, convs *conversation.Registry, renderer *render.Renderer, catalog *prompt.Catalog) {
	h := &conversationsAPIHandler{convs: convs, renderer: renderer, catalog: catalog}
	r.Post("/conversations", h.Create)
	r.Get("/conversations/{id}", h.Get)
	r.Post("/conversations/{id}/messages", h.Send)
	r.Delete("/conversations/{id}/messages", h.Clear)
	r.Delete("/conversations/{id}", h.Delete)
}

func toConversationResponse(o *conversation.Orchestrator) ConversationResponse {
	return ConversationResponse{ID: o.ID(), State: o.State().String(), Messages: o.Messages()}
}

// lookup fetches the {id} conversation, answering 404 itself when missing.
func (h *conversationsAPIHandler) lookup(w http.ResponseWriter, r *http.Request) (*conversation.Orchestrator, bool) {
	o, err := h.convs.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found", "NOT_FOUND")
		return nil, false
	}
	return o, true
}

// Create starts an empty conversation.
// POST /api/v1/conversations
//
// @Summary      Create a conversation
// @Tags         Conversations
// @Produce      json
// @Success      201  {object}  ConversationResponse
// @Router       /conversations [post]
func (h *conversationsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, toConversationResponse(h.convs.Create()))
}

// Get returns a conversation and its messages.
// GET /api/v1/conversations/{id}
//
// @Summary      Get a conversation
// @Tags         Conversations
// @Produce      json
// @Param        id   path      string  true  "Conversation ID"
// @Success      200  {object}  ConversationResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /conversations/{id} [get]
func (h *conversationsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toConversationResponse(o))
}

// Send appends a user turn and waits for the assistant turn.
// POST /api/v1/conversations/{id}/messages
//
// @Summary      Send a message
// @Description  Backend failures are reported as the fixed apology reply, not as an HTTP error.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Conversation ID"
// @Param        body  body      SendMessageRequest  true  "Message"
// @Success      200   {object}  SendMessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /conversations/{id}/messages [post]
func (h *conversationsAPIHandler) Send(w http.ResponseWriter, r *http.Request) {
	o, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required", "BAD_REQUEST")
		return
	}
	model, err := h.catalog.Resolve(req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_MODEL")
		return
	}

	instruction := req.Instruction
	if instruction == "" && req.Template != "" {
		res := h.renderer.Evaluate(req.Template, req.Context)
		if res.Error != "" {
			writeError(w, http.StatusUnprocessableEntity, res.Error, "INVALID_CONTEXT")
			return
		}
		instruction = res.Output
	}

	text := req.Content
	if req.Structured {
		text = conversation.WrapStructuredReply(req.Content)
	}

	// The call runs to completion even if the client goes away.
	reply := o.Send(context.WithoutCancel(r.Context()), instruction, model, text)
	writeJSON(w, http.StatusOK, SendMessageResponse{Reply: reply, Conversation: toConversationResponse(o)})
}

// Clear empties a conversation.
// DELETE /api/v1/conversations/{id}/messages
//
// @Summary      Clear a conversation
// @Tags         Conversations
// @Param        id   path  string  true  "Conversation ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /conversations/{id}/messages [delete]
func (h *conversationsAPIHandler) Clear(w http.ResponseWriter, r *http.Request) {
	o, ok := h.lookup(w, r)
	if !ok {
		return
	}
	o.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// Delete discards a conversation.
// DELETE /api/v1/conversations/{id}
//
// @Summary      Delete a conversation
// @Tags         Conversations
// @Param        id   path  string  true  "Conversation ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /conversations/{id} [delete]
func (h *conversationsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.convs.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "conversation not found", "NOT_FOUND")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
