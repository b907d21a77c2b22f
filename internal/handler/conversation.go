package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/joestump/promptpad/internal/conversation"
	"github.com/joestump/promptpad/internal/prompt"
)

// ConversationHandler runs the chat panel of the playground.
type ConversationHandler struct {
	state   *stateStore
	catalog *prompt.Catalog
	convs   *conversation.Registry
}

// ConversationView is the data for the conversation partial.
type ConversationView struct {
	Messages []prompt.Message
	Sending  bool
}

func conversationView(convs *conversation.Registry, id string) ConversationView {
	if id == "" {
		return ConversationView{}
	}
	o, err := convs.Get(id)
	if err != nil {
		return ConversationView{}
	}
	return ConversationView{Messages: o.Messages(), Sending: o.State() == conversation.Sending}
}

// Send handles POST /conversation/messages. The rendered output is the
// instruction; the reply is rendered into the conversation partial.
func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	text := r.FormValue("message")
	if strings.TrimSpace(text) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	h.send(w, r, text)
}

// Reply handles POST /conversation/reply: content is sent back as a
// pre-tagged structured user turn.
func (h *ConversationHandler) Reply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	content := r.FormValue("content")
	if strings.TrimSpace(content) == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	h.send(w, r, conversation.WrapStructuredReply(content))
}

func (h *ConversationHandler) send(w http.ResponseWriter, r *http.Request, text string) {
	st := h.state.load(r.Context())
	model, err := h.catalog.Resolve(st.Model)
	if err != nil {
		model = h.catalog.Default()
	}

	o := h.convs.GetOrCreate(st.ConversationID)
	if o.ID() != st.ConversationID {
		st.ConversationID = o.ID()
		h.state.save(r.Context(), st)
	}

	// The call runs to completion even if the client goes away.
	o.Send(context.WithoutCancel(r.Context()), st.Output, model, text)
	renderFragment(w, "conversation", ConversationView{Messages: o.Messages()})
}

// Clear handles POST /conversation/clear. Only the conversation is reset.
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	st := h.state.load(r.Context())
	if o, err := h.convs.Get(st.ConversationID); err == nil {
		o.Clear()
	}
	renderFragment(w, "conversation", ConversationView{})
}
