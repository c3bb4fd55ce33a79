package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/reqwire/reqwire/internal/specdoc"
	"github.com/reqwire/reqwire/internal/storage"
)

type requirementHandler struct {
	responder Responder
	store     storage.Store
	renderer  *specdoc.Renderer
}

func newRequirementHandler(store storage.Store, renderer *specdoc.Renderer, logger zerolog.Logger) requirementHandler {
	handlerLogger := logger.With().Str("handler", "requirement").Logger()
	return requirementHandler{
		responder: NewResponder(handlerLogger),
		store:     store,
		renderer:  renderer,
	}
}

// list handles GET /api/requirements.
func (h requirementHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requirements, err := h.store.ListRequirements(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, requirements)
	}
}

// create handles POST /api/requirements.
func (h requirementHandler) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input storage.NewRequirement
		if err := decodeBody(r, &input); err != nil {
			h.responder.WriteBadRequest(w, "invalid request body: "+err.Error())
			return
		}
		requirement, err := h.store.CreateRequirement(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusCreated, requirement)
	}
}

// update handles PUT /api/requirements/{id}.
func (h requirementHandler) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd storage.RequirementUpdate
		if err := decodeBody(r, &upd); err != nil {
			h.responder.WriteBadRequest(w, "invalid request body: "+err.Error())
			return
		}
		requirement, err := h.store.UpdateRequirement(r.Context(), chi.URLParam(r, "id"), upd)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, requirement)
	}
}

// delete handles DELETE /api/requirements/{id}.
func (h requirementHandler) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		deleted, err := h.store.DeleteRequirement(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !deleted {
			h.responder.WriteJSON(w, http.StatusNotFound, errorBody("not_found", "requirement "+id+" not found"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// specification handles GET /api/projects/{id}/specification.
// Query parameters: ?format=markdown|json and repeated ?section= values.
func (h requirementHandler) specification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")
		project, err := h.store.GetProjectByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		requirements, err := h.store.ListRequirementsByProject(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		doc := specdoc.Build(project, requirements,
			time.Now().UTC().Format(time.RFC3339),
			r.URL.Query()["section"])

		format := specdoc.Format(r.URL.Query().Get("format"))
		rendered, err := h.renderer.Render(doc, format)
		if err != nil {
			h.responder.WriteBadRequest(w, err.Error())
			return
		}

		if format == specdoc.FormatJSON {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(rendered)); err != nil {
			h.responder.logger.Error().Err(err).Msg("writing specification")
		}
	}
}
