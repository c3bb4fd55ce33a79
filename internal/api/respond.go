// Package api exposes the stored projects and requirements over REST.
//
// The HTTP surface mirrors the MCP tools: project and requirement CRUD,
// search, and specification rendering, mounted under /api.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/reqwire/reqwire/internal/storage"
)

// Responder writes JSON responses and maps domain errors to status codes.
type Responder struct {
	logger zerolog.Logger
}

// NewResponder creates a Responder logging through the given logger.
func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger: logger}
}

// WriteJSON writes data with the given status code.
func (r Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		r.logger.Error().Err(err).Msg("writing response")
	}
}

// WriteError maps a storage error to a status code and JSON body.
// Not-found and validation errors carry their message; anything else is
// logged and returned as an opaque 500.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		r.WriteJSON(w, http.StatusNotFound, errorBody("not_found", err.Error()))
	case errors.Is(err, storage.ErrValidation):
		r.WriteJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", err.Error()))
	default:
		r.logger.Error().Err(err).Msg("internal error")
		r.WriteJSON(w, http.StatusInternalServerError, errorBody("internal_error", "an unexpected error occurred"))
	}
}

// WriteBadRequest rejects a request before it reaches storage.
func (r Responder) WriteBadRequest(w http.ResponseWriter, message string) {
	r.WriteJSON(w, http.StatusBadRequest, errorBody("bad_request", message))
}

func errorBody(code, message string) map[string]any {
	return map[string]any{
		"status":  "error",
		"error":   code,
		"message": message,
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(req *http.Request, v any) error {
	defer req.Body.Close() //nolint:errcheck
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
