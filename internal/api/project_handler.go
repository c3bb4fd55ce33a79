package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/reqwire/reqwire/internal/storage"
)

type projectHandler struct {
	responder Responder
	store     storage.Store
}

func newProjectHandler(store storage.Store, logger zerolog.Logger) projectHandler {
	handlerLogger := logger.With().Str("handler", "project").Logger()
	return projectHandler{
		responder: NewResponder(handlerLogger),
		store:     store,
	}
}

// list handles GET /api/projects. The optional ?search= parameter
// filters by a case-insensitive name substring.
func (h projectHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			projects []storage.Project
			err      error
		)
		if term := r.URL.Query().Get("search"); term != "" {
			projects, err = h.store.FindProjectsByName(r.Context(), term)
		} else {
			projects, err = h.store.ListProjects(r.Context())
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, projects)
	}
}

// get handles GET /api/projects/{id}.
func (h projectHandler) get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.store.GetProjectByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, project)
	}
}

// create handles POST /api/projects.
func (h projectHandler) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input storage.NewProject
		if err := decodeBody(r, &input); err != nil {
			h.responder.WriteBadRequest(w, "invalid request body: "+err.Error())
			return
		}
		project, err := h.store.CreateProject(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusCreated, project)
	}
}

// update handles PUT /api/projects/{id}.
func (h projectHandler) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd storage.ProjectUpdate
		if err := decodeBody(r, &upd); err != nil {
			h.responder.WriteBadRequest(w, "invalid request body: "+err.Error())
			return
		}
		project, err := h.store.UpdateProject(r.Context(), chi.URLParam(r, "id"), upd)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, project)
	}
}

// delete handles DELETE /api/projects/{id}. Deleting a project also
// removes its requirements.
func (h projectHandler) delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		deleted, err := h.store.DeleteProject(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !deleted {
			h.responder.WriteJSON(w, http.StatusNotFound, errorBody("not_found", "project "+id+" not found"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listRequirements handles GET /api/projects/{id}/requirements.
func (h projectHandler) listRequirements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requirements, err := h.store.ListRequirementsByProject(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, requirements)
	}
}
