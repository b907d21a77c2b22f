package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/promptpad/internal/prompt"
	"github.com/joestump/promptpad/internal/render"
)

type playgroundAPIHandler struct {
	renderer *render.Renderer
	catalog  *prompt.Catalog
}

func registerPlaygroundRoutes(r chi.Router, renderer *render.Renderer, catalog *prompt.Catalog) {
	h := &playgroundAPIHandler{renderer: renderer, catalog: catalog}
	r.Post("/validate", h.Validate)
	r.Post("/sanitize", h.Sanitize)
	r.Post("/render", h.Render)
	r.Post("/encode", h.Encode)
	r.Get("/models", h.Models)
}

// Validate checks that a context is a JSON object.
// POST /api/v1/validate
//
// @Summary      Validate a JSON context
// @Description  Reports "JSON is empty", the parser's message, or "JSON must be an object" for unusable input.
// @Tags         Playground
// @Accept       json
// @Produce      json
// @Param        body  body      ValidateRequest  true  "Context text"
// @Success      200   {object}  ValidateResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /validate [post]
func (h *playgroundAPIHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v := render.ValidateJSON(req.JSON)
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: v.OK(), Error: v.Error, Data: v.Data})
}

// Sanitize closes unterminated comments.
// POST /api/v1/sanitize
//
// @Summary      Repair unterminated comments
// @Tags         Playground
// @Accept       json
// @Produce      json
// @Param        body  body      SanitizeRequest  true  "Template"
// @Success      200   {object}  SanitizeResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /sanitize [post]
func (h *playgroundAPIHandler) Sanitize(w http.ResponseWriter, r *http.Request) {
	var req SanitizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, SanitizeResponse{Template: render.Sanitize(req.Template)})
}

// Render evaluates a template against a JSON context.
// POST /api/v1/render
//
// @Summary      Render a template
// @Description  Template errors are returned as output with render_failed set, never as an HTTP error.
// @Tags         Playground
// @Accept       json
// @Produce      json
// @Param        body  body      RenderRequest  true  "Template and context"
// @Success      200   {object}  RenderResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /render [post]
func (h *playgroundAPIHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.renderer.Evaluate(req.Template, req.Context)
	writeJSON(w, http.StatusOK, RenderResponse{
		Output:       res.Output,
		Error:        res.Error,
		RenderFailed: res.Error == "" && render.IsRenderError(res.Output),
	})
}

// Encode linearizes a conversation into a prompt.
// POST /api/v1/encode
//
// @Summary      Encode a conversation
// @Description  Produces the prompt string sent to the model for the next assistant turn.
// @Tags         Playground
// @Accept       json
// @Produce      json
// @Param        body  body      EncodeRequest  true  "Instruction, history and model"
// @Success      200   {object}  EncodeResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /encode [post]
func (h *playgroundAPIHandler) Encode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	model, err := h.catalog.Resolve(req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_MODEL")
		return
	}

	history := make([]prompt.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := prompt.Role(m.Role)
		if !role.Valid() {
			writeError(w, http.StatusBadRequest, "role must be user or assistant", "BAD_REQUEST")
			return
		}
		history = append(history, prompt.Message{Role: role, Content: m.Content})
	}

	writeJSON(w, http.StatusOK, EncodeResponse{
		Prompt: prompt.Encode(prompt.Request{
			Instruction: req.Instruction,
			History:     history,
			Model:       model,
			RawOverride: req.RawOverride,
		}),
		Model: model.ID,
	})
}

// Models lists the selectable models.
// GET /api/v1/models
//
// @Summary      List models
// @Tags         Playground
// @Produce      json
// @Success      200  {object}  ModelListResponse
// @Router       /models [get]
func (h *playgroundAPIHandler) Models(w http.ResponseWriter, r *http.Request) {
	def := h.catalog.Default().ID
	models := h.catalog.Models()
	resp := ModelListResponse{Models: make([]ModelResponse, 0, len(models))}
	for _, m := range models {
		resp.Models = append(resp.Models, ModelResponse{
			ID:                m.ID,
			Label:             m.Label,
			SuppressReasoning: m.SuppressReasoning,
			Default:           m.ID == def,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
