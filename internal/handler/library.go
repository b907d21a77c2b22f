package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/promptpad/internal/store"
)

// LibraryHandler serves the prompt library popover.
type LibraryHandler struct {
	state   *stateStore
	prompts store.PromptStoreIface
	logger  *zap.Logger
}

// LibraryView is the data for the library_list partial.
type LibraryView struct {
	Search  string
	Prompts []*store.Prompt
	Error   string
}

func listLibrary(r *http.Request, prompts store.PromptStoreIface, search string) LibraryView {
	v := LibraryView{Search: search}
	list, err := prompts.List(r.Context(), store.ListOptions{Search: search})
	if err != nil {
		v.Error = "Could not load prompts."
		return v
	}
	v.Prompts = list
	return v
}

// List handles GET /library?q=.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	renderFragment(w, "library_list", listLibrary(r, h.prompts, r.URL.Query().Get("q")))
}

// Save handles POST /library: the posted template is stored under name, or
// under a generated name when name is blank.
func (h *LibraryHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	content := r.FormValue("template")
	if !r.Form.Has("template") {
		content = h.state.load(r.Context()).Template
	}

	_, err := h.prompts.Create(r.Context(), r.FormValue("name"), content)
	h.respond(w, r, err)
}

// Load handles POST /library/{id}/load: the prompt replaces the template
// and the page refreshes.
func (h *LibraryHandler) Load(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "prompt not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("load prompt", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	st := h.state.load(r.Context())
	st.Template = p.Content
	h.state.evaluate(&st)
	h.state.save(r.Context(), st)

	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Rename handles POST /library/{id}/rename.
func (h *LibraryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	_, err := h.prompts.Rename(r.Context(), chi.URLParam(r, "id"), r.FormValue("name"))
	h.respond(w, r, err)
}

// Delete handles DELETE /library/{id}.
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.prompts.Delete(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, err)
}

// respond re-renders the list, with err shown inline when it is a user error.
func (h *LibraryHandler) respond(w http.ResponseWriter, r *http.Request, err error) {
	view := listLibrary(r, h.prompts, "")
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		view.Error = "Prompt not found."
	case errors.Is(err, store.ErrNameInvalid):
		view.Error = "Prompt names must be 1 to 100 characters."
	case errors.Is(err, store.ErrNameTaken):
		view.Error = "A prompt with that name already exists."
	default:
		h.logger.Error("library update", zap.Error(err))
		view.Error = "Something went wrong."
	}
	renderFragment(w, "library_list", view)
}
