package resources

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/reqwire/reqwire/internal/storage"
)

func newTestHandler(t *testing.T) (*Handler, storage.Store) {
	t.Helper()
	store, err := storage.OpenJSON(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("setup: open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewHandler(store), store
}

func seedData(t *testing.T, store storage.Store) (storage.Project, []storage.Requirement) {
	t.Helper()
	ctx := context.Background()

	project, err := store.CreateProject(ctx, storage.NewProject{Name: "Webshop"})
	if err != nil {
		t.Fatalf("setup: create project: %v", err)
	}

	seeds := []storage.NewRequirement{
		{
			Title:       "Checkout",
			Description: "Users can check out a cart",
			Type:        storage.TypeFunctional,
			Priority:    storage.PriorityHigh,
			ProjectID:   project.ID,
			Tags:        []string{"payment", "web"},
		},
		{
			Title:       "Fast pages",
			Description: "Pages render within one second",
			Type:        storage.TypeNonFunctional,
			Priority:    storage.PriorityMedium,
			ProjectID:   project.ID,
			Tags:        []string{"web"},
		},
	}
	created := make([]storage.Requirement, 0, len(seeds))
	for _, seed := range seeds {
		r, err := store.CreateRequirement(ctx, seed)
		if err != nil {
			t.Fatalf("setup: create requirement: %v", err)
		}
		created = append(created, r)
	}
	return project, created
}

func readResource(t *testing.T, handle func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error), uri string) string {
	t.Helper()
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	contents, err := handle(context.Background(), req)
	if err != nil {
		t.Fatalf("read %s: %v", uri, err)
	}
	if len(contents) != 1 {
		t.Fatalf("read %s: got %d contents, want 1", uri, len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("read %s: unexpected contents type %T", uri, contents[0])
	}
	return tc.Text
}

func decodeRequirements(t *testing.T, text string) []storage.Requirement {
	t.Helper()
	var requirements []storage.Requirement
	if err := json.Unmarshal([]byte(text), &requirements); err != nil {
		t.Fatalf("decode requirements: %v\n%s", err, text)
	}
	return requirements
}

func TestHandleRequirementsList(t *testing.T) {
	handler, store := newTestHandler(t)
	seedData(t, store)

	text := readResource(t, handler.HandleRequirementsList, "requirements://list")
	if got := decodeRequirements(t, text); len(got) != 2 {
		t.Errorf("listed %d requirements, want 2", len(got))
	}
}

func TestHandleRequirementsSummary(t *testing.T) {
	handler, store := newTestHandler(t)
	seedData(t, store)

	text := readResource(t, handler.HandleRequirementsSummary, "requirements://summary")

	var summary struct {
		TotalRequirements int            `json:"totalRequirements"`
		ByType            map[string]int `json:"byType"`
		ByStatus          map[string]int `json:"byStatus"`
		ByPriority        map[string]int `json:"byPriority"`
		TopTags           map[string]int `json:"topTags"`
	}
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, text)
	}

	if summary.TotalRequirements != 2 {
		t.Errorf("totalRequirements = %d, want 2", summary.TotalRequirements)
	}
	if summary.ByType["functional"] != 1 || summary.ByType["non-functional"] != 1 {
		t.Errorf("byType = %v", summary.ByType)
	}
	if summary.ByStatus["draft"] != 2 {
		t.Errorf("byStatus = %v", summary.ByStatus)
	}
	if summary.TopTags["web"] != 2 || summary.TopTags["payment"] != 1 {
		t.Errorf("topTags = %v", summary.TopTags)
	}
}

func TestHandleRequirementByID(t *testing.T) {
	handler, store := newTestHandler(t)
	_, created := seedData(t, store)

	text := readResource(t, handler.HandleRequirement, "requirements://"+created[0].ID)

	var got storage.Requirement
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("decode requirement: %v", err)
	}
	if got.ID != created[0].ID {
		t.Errorf("id = %q, want %q", got.ID, created[0].ID)
	}
}

func TestHandleRequirementNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	text := readResource(t, handler.HandleRequirement, "requirements://missing-id")
	if !strings.HasPrefix(text, "Error: requirement missing-id not found") {
		t.Errorf("unexpected text: %s", text)
	}
}

func TestHandleRequirementsByType(t *testing.T) {
	handler, store := newTestHandler(t)
	seedData(t, store)

	text := readResource(t, handler.HandleRequirementsByType, "requirements://type/functional")
	got := decodeRequirements(t, text)
	if len(got) != 1 || got[0].Title != "Checkout" {
		t.Errorf("filtered = %v", got)
	}
}

func TestHandleRequirementsByTypeUnknown(t *testing.T) {
	handler, _ := newTestHandler(t)

	text := readResource(t, handler.HandleRequirementsByType, "requirements://type/wish")
	if !strings.HasPrefix(text, "Error:") {
		t.Errorf("expected an error resource, got: %s", text)
	}
}

func TestHandleRequirementsByStatus(t *testing.T) {
	handler, store := newTestHandler(t)
	seedData(t, store)

	text := readResource(t, handler.HandleRequirementsByStatus, "requirements://status/draft")
	if got := decodeRequirements(t, text); len(got) != 2 {
		t.Errorf("filtered %d requirements, want 2", len(got))
	}

	text = readResource(t, handler.HandleRequirementsByStatus, "requirements://status/approved")
	if got := decodeRequirements(t, text); len(got) != 0 {
		t.Errorf("filtered %d requirements, want 0", len(got))
	}
}

func TestHandleRequirementsByPriority(t *testing.T) {
	handler, store := newTestHandler(t)
	seedData(t, store)

	text := readResource(t, handler.HandleRequirementsByPriority, "requirements://priority/high")
	got := decodeRequirements(t, text)
	if len(got) != 1 || got[0].Priority != storage.PriorityHigh {
		t.Errorf("filtered = %v", got)
	}
}

func TestHandleRequirementsByProject(t *testing.T) {
	handler, store := newTestHandler(t)
	project, _ := seedData(t, store)

	text := readResource(t, handler.HandleRequirementsByProject, "requirements://project/"+project.ID)
	if got := decodeRequirements(t, text); len(got) != 2 {
		t.Errorf("filtered %d requirements, want 2", len(got))
	}
}

func TestHandleRequirementsByTag(t *testing.T) {
	handler, store := newTestHandler(t)
	seedData(t, store)

	text := readResource(t, handler.HandleRequirementsByTag, "requirements://tag/payment")
	got := decodeRequirements(t, text)
	if len(got) != 1 || got[0].Title != "Checkout" {
		t.Errorf("filtered = %v", got)
	}
}

func TestHandleProjectsList(t *testing.T) {
	handler, store := newTestHandler(t)
	seedData(t, store)

	text := readResource(t, handler.HandleProjectsList, "projects://list")
	var projects []storage.Project
	if err := json.Unmarshal([]byte(text), &projects); err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	if len(projects) != 1 {
		t.Errorf("listed %d projects, want 1", len(projects))
	}
}

func TestHandleProject(t *testing.T) {
	handler, store := newTestHandler(t)
	project, _ := seedData(t, store)

	text := readResource(t, handler.HandleProject, "projects://"+project.ID)
	var got storage.Project
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("decode project: %v", err)
	}
	if got.ID != project.ID {
		t.Errorf("id = %q, want %q", got.ID, project.ID)
	}
}

func TestHandleProjectNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	text := readResource(t, handler.HandleProject, "projects://missing-id")
	if !strings.HasPrefix(text, "Error:") {
		t.Errorf("expected an error resource, got: %s", text)
	}
}
