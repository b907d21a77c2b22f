package handler

import (
	"net/http"

	"github.com/joestump/promptpad/internal/conversation"
	"github.com/joestump/promptpad/internal/prompt"
	"github.com/joestump/promptpad/internal/store"
)

// PlaygroundHandler serves the editor page and its live-preview endpoints.
type PlaygroundHandler struct {
	state        *stateStore
	catalog      *prompt.Catalog
	convs        *conversation.Registry
	prompts      store.PromptStoreIface
	loginEnabled bool
}

// PlaygroundPage is the data for playground.html.
type PlaygroundPage struct {
	BasePage
	State        PlaygroundState
	Models       []prompt.Model
	Conversation ConversationView
	Library      LibraryView
}

// Index serves GET /.
func (h *PlaygroundHandler) Index(w http.ResponseWriter, r *http.Request) {
	st := h.state.load(r.Context())
	if st.Model == "" {
		st.Model = h.catalog.Default().ID
	}

	page := PlaygroundPage{
		BasePage:     newBasePage(r, h.loginEnabled),
		State:        st,
		Models:       h.catalog.Models(),
		Conversation: conversationView(h.convs, st.ConversationID),
		Library:      listLibrary(r, h.prompts, ""),
	}
	render(w, "playground.html", page)
}

// UpdateTemplate handles POST /playground/template and returns the output panel.
func (h *PlaygroundHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(st *PlaygroundState) { st.Template = r.FormValue("template") })
}

// UpdateContext handles POST /playground/context and returns the output panel.
func (h *PlaygroundHandler) UpdateContext(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(st *PlaygroundState) { st.Context = r.FormValue("context") })
}

func (h *PlaygroundHandler) update(w http.ResponseWriter, r *http.Request, edit func(*PlaygroundState)) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	st := h.state.load(r.Context())
	edit(&st)
	h.state.evaluate(&st)
	h.state.save(r.Context(), st)
	renderFragment(w, "output_panel", st)
}

// SelectModel handles POST /playground/model.
func (h *PlaygroundHandler) SelectModel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	m, err := h.catalog.Resolve(r.FormValue("model"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st := h.state.load(r.Context())
	st.Model = m.ID
	h.state.save(r.Context(), st)
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles POST /playground/clear: it empties the template, the
// context, the output and the conversation. The conversation is dropped from
// the registry; the next message starts a new one.
func (h *PlaygroundHandler) Clear(w http.ResponseWriter, r *http.Request) {
	st := h.state.load(r.Context())
	if st.ConversationID != "" {
		if o, err := h.convs.Get(st.ConversationID); err == nil {
			o.Clear()
			_ = h.convs.Delete(o.ID())
		}
		st.ConversationID = ""
	}
	st.Template = ""
	st.Context = ""
	st.Output = ""
	st.JSONError = ""
	h.state.save(r.Context(), st)

	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
