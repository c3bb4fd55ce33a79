package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqwire/reqwire/internal/config"
	"github.com/reqwire/reqwire/internal/specdoc"
	"github.com/reqwire/reqwire/internal/storage"
)

func newTestRouter(t *testing.T) (http.Handler, storage.Store) {
	t.Helper()

	store, err := storage.OpenJSON(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	renderer, err := specdoc.NewRenderer()
	require.NoError(t, err)

	cfg := config.Config{Port: "8080", CORSOrigins: []string{"*"}}
	return newRouter(store, renderer, cfg, zerolog.Nop()), store
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createProjectViaAPI(t *testing.T, router http.Handler) storage.Project {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/projects", map[string]string{
		"name":        "Webshop",
		"description": "An online store",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var project storage.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	return project
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexListsEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Name      string              `json:"name"`
		Endpoints []map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "reqwire API", body.Name)
	assert.NotEmpty(t, body.Endpoints)
}

func TestCreateAndGetProject(t *testing.T) {
	router, _ := newTestRouter(t)
	project := createProjectViaAPI(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/projects/"+project.ID, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got storage.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, project, got)
}

func TestGetProjectNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/projects/missing-id", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["error"])
}

func TestCreateProjectValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/projects", map[string]string{
		"name": "   ",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["error"])
}

func TestCreateProjectRejectsUnknownFields(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/projects", map[string]string{
		"name":  "Webshop",
		"owner": "nobody",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProjectsWithSearch(t *testing.T) {
	router, _ := newTestRouter(t)
	createProjectViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/projects", map[string]string{"name": "Intranet"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/projects?search=web", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var found []storage.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Webshop", found[0].Name)

	rec = doJSON(t, router, http.MethodGet, "/api/projects", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Len(t, found, 2)
}

func TestUpdateProject(t *testing.T) {
	router, _ := newTestRouter(t)
	project := createProjectViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPut, "/api/projects/"+project.ID, map[string]string{
		"name": "Renamed",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var updated storage.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, project.Description, updated.Description)
}

func TestDeleteProject(t *testing.T) {
	router, _ := newTestRouter(t)
	project := createProjectViaAPI(t, router)

	rec := doJSON(t, router, http.MethodDelete, "/api/projects/"+project.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/projects/"+project.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequirementLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)
	project := createProjectViaAPI(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/requirements", map[string]any{
		"title":       "Checkout",
		"description": "Users can check out a cart",
		"type":        "functional",
		"priority":    "high",
		"projectId":   project.ID,
		"tags":        []string{"payment", "web"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created storage.Requirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, storage.StatusDraft, created.Status)
	assert.ElementsMatch(t, []string{"payment", "web"}, created.Tags)

	rec = doJSON(t, router, http.MethodGet, "/api/projects/"+project.ID+"/requirements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []storage.Requirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rec = doJSON(t, router, http.MethodPut, "/api/requirements/"+created.ID, map[string]any{
		"status": "approved",
		"tags":   []string{"payment", "mobile"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated storage.Requirement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, storage.StatusApproved, updated.Status)
	assert.ElementsMatch(t, []string{"payment", "mobile"}, updated.Tags)

	rec = doJSON(t, router, http.MethodDelete, "/api/requirements/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/requirements/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRequirementUnknownProject(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/requirements", map[string]any{
		"title":       "Orphan",
		"description": "No project exists for this",
		"type":        "functional",
		"priority":    "low",
		"projectId":   "missing-id",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSpecificationMarkdown(t *testing.T) {
	router, store := newTestRouter(t)
	project := createProjectViaAPI(t, router)

	_, err := store.CreateRequirement(context.Background(), storage.NewRequirement{
		Title:       "Checkout",
		Description: "Users can check out a cart",
		Type:        storage.TypeFunctional,
		Priority:    storage.PriorityHigh,
		ProjectID:   project.ID,
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/projects/"+project.ID+"/specification", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "# Webshop — Specification")
	assert.Contains(t, rec.Body.String(), "### Checkout")
}

func TestSpecificationJSONWithSections(t *testing.T) {
	router, _ := newTestRouter(t)
	project := createProjectViaAPI(t, router)

	rec := doJSON(t, router, http.MethodGet,
		"/api/projects/"+project.ID+"/specification?format=json&section=overview&section=summary", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var doc specdoc.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.ElementsMatch(t, []string{"overview", "summary"}, doc.Sections)
}

func TestSpecificationUnknownProject(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/projects/missing-id/specification", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSpecificationBadFormat(t *testing.T) {
	router, _ := newTestRouter(t)
	project := createProjectViaAPI(t, router)

	rec := doJSON(t, router, http.MethodGet,
		"/api/projects/"+project.ID+"/specification?format=yaml", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
