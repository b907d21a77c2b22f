package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/promptpad/internal/store"
)

type promptsAPIHandler struct {
	prompts store.PromptStoreIface
	logger  *zap.Logger
}

func registerPromptRoutes(r chi.Router, prompts store.PromptStoreIface, logger *zap.Logger) {
	h := &promptsAPIHandler{prompts: prompts, logger: logger}
	r.Get("/prompts", h.List)
	r.Post("/prompts", h.Create)
	r.Get("/prompts/{id}", h.Get)
	r.Put("/prompts/{id}", h.Update)
	r.Delete("/prompts/{id}", h.Delete)
}

// storeError maps store errors to API responses.
func (h *promptsAPIHandler) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "prompt not found", "NOT_FOUND")
	case errors.Is(err, store.ErrNameInvalid):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_NAME")
	case errors.Is(err, store.ErrNameTaken):
		writeError(w, http.StatusConflict, err.Error(), "NAME_TAKEN")
	default:
		h.logger.Error("prompt store", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}

// List returns library prompts ordered by name.
// GET /api/v1/prompts
//
// @Summary      List prompts
// @Tags         Prompts
// @Produce      json
// @Param        q       query     string  false  "Case-insensitive name search"
// @Param        cursor  query     string  false  "Pagination cursor"
// @Param        limit   query     int     false  "Page size (max 200)"
// @Success      200     {object}  PromptListResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /prompts [get]
func (h *promptsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	after, limit := parsePagination(r)
	// Fetch one extra row to learn whether another page exists.
	list, err := h.prompts.List(r.Context(), store.ListOptions{
		Search: r.URL.Query().Get("q"),
		After:  after,
		Limit:  limit + 1,
	})
	if err != nil {
		h.storeError(w, err)
		return
	}

	resp := PromptListResponse{Prompts: make([]PromptResponse, 0, len(list))}
	if len(list) > limit {
		list = list[:limit]
		next := encodeCursor(list[len(list)-1].Name)
		resp.NextCursor = &next
	}
	for _, p := range list {
		resp.Prompts = append(resp.Prompts, toPromptResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create saves a prompt. A blank name gets a generated "Prompt N" name.
// POST /api/v1/prompts
//
// @Summary      Create a prompt
// @Tags         Prompts
// @Accept       json
// @Produce      json
// @Param        body  body      PromptRequest  true  "Prompt"
// @Success      201   {object}  PromptResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /prompts [post]
func (h *promptsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.prompts.Create(r.Context(), req.Name, req.Content)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPromptResponse(p))
}

// Get returns one prompt.
// GET /api/v1/prompts/{id}
//
// @Summary      Get a prompt
// @Tags         Prompts
// @Produce      json
// @Param        id   path      string  true  "Prompt ID"
// @Success      200  {object}  PromptResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /prompts/{id} [get]
func (h *promptsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromptResponse(p))
}

// Update renames a prompt and/or replaces its content.
// PUT /api/v1/prompts/{id}
//
// @Summary      Update a prompt
// @Tags         Prompts
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Prompt ID"
// @Param        body  body      UpdatePromptRequest  true  "Fields to change"
// @Success      200   {object}  PromptResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /prompts/{id} [put]
func (h *promptsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePromptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")

	var (
		p   *store.Prompt
		err error
	)
	if req.Name != nil {
		if p, err = h.prompts.Rename(r.Context(), id, *req.Name); err != nil {
			h.storeError(w, err)
			return
		}
	}
	if req.Content != nil {
		if p, err = h.prompts.UpdateContent(r.Context(), id, *req.Content); err != nil {
			h.storeError(w, err)
			return
		}
	}
	if p == nil {
		if p, err = h.prompts.GetByID(r.Context(), id); err != nil {
			h.storeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toPromptResponse(p))
}

// Delete removes a prompt.
// DELETE /api/v1/prompts/{id}
//
// @Summary      Delete a prompt
// @Tags         Prompts
// @Param        id   path  string  true  "Prompt ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /prompts/{id} [delete]
func (h *promptsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.prompts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
