package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Filenames for the document store's two collections.
const (
	projectsFile     = "projects.json"
	requirementsFile = "requirements.json"
)

// JSONStore persists entities as whole-collection JSON documents on
// disk. The in-memory collections are loaded once at Open and are
// authoritative for the process lifetime; every mutation rewrites the
// full document. Concurrent external processes writing the same files
// are unsupported.
type JSONStore struct {
	mu     sync.Mutex
	dir    string
	logger zerolog.Logger

	projects     []Project
	requirements []Requirement
}

// OpenJSON loads (or initializes) the document store under dir.
func OpenJSON(dir string, logger zerolog.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}

	s := &JSONStore{dir: dir, logger: logger}
	if err := loadCollection(s.projectPath(), &s.projects); err != nil {
		return nil, err
	}
	if err := loadCollection(s.requirementPath(), &s.requirements); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) projectPath() string     { return filepath.Join(s.dir, projectsFile) }
func (s *JSONStore) requirementPath() string { return filepath.Join(s.dir, requirementsFile) }

// loadCollection reads a collection file into dst, creating an empty
// file if it does not exist yet.
func loadCollection[T any](path string, dst *[]T) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		*dst = []T{}
		if werr := os.WriteFile(path, []byte("[]"), 0o644); werr != nil {
			return fmt.Errorf("storage: initialize %s: %w", filepath.Base(path), werr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("storage: parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeCollection rewrites a collection file in full. There is no
// partial update on disk.
func writeCollection[T any](path string, items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Close is a no-op for the document store; state is already on disk.
func (s *JSONStore) Close() error { return nil }

// --- Projects ---

// CreateProject assigns a fresh id and timestamps, persists the full
// collection, and returns the new record. The in-memory collection is
// only updated after the write succeeds, so a failed write leaves no
// divergence between memory and disk.
func (s *JSONStore) CreateProject(ctx context.Context, p NewProject) (Project, error) {
	if err := p.Validate(); err != nil {
		return Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	project := Project{
		ID:          newID(),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	next := append(append([]Project{}, s.projects...), project)
	if err := writeCollection(s.projectPath(), next); err != nil {
		return Project{}, err
	}
	s.projects = next
	return project, nil
}

// UpdateProject merges only the provided fields and refreshes updatedAt.
func (s *JSONStore) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (Project, error) {
	if err := upd.Validate(); err != nil {
		return Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}

	next := append([]Project{}, s.projects...)
	project := next[idx]
	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	project.UpdatedAt = now()
	next[idx] = project

	if err := writeCollection(s.projectPath(), next); err != nil {
		return Project{}, err
	}
	s.projects = next
	return project, nil
}

// DeleteProject removes the project and every requirement it owns,
// persisting both collections. Returns false if the id was absent.
func (s *JSONStore) DeleteProject(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	nextProjects := append([]Project{}, s.projects[:idx]...)
	nextProjects = append(nextProjects, s.projects[idx+1:]...)

	nextRequirements := make([]Requirement, 0, len(s.requirements))
	for _, r := range s.requirements {
		if r.ProjectID != id {
			nextRequirements = append(nextRequirements, r)
		}
	}

	// Cascade order: orphaned requirements go first so a failure between
	// the two writes never leaves requirements pointing at a deleted
	// project. If the second write fails, the first is restored.
	if err := writeCollection(s.requirementPath(), nextRequirements); err != nil {
		return false, err
	}
	if err := writeCollection(s.projectPath(), nextProjects); err != nil {
		if rerr := writeCollection(s.requirementPath(), s.requirements); rerr != nil {
			s.logger.Error().Err(rerr).Msg("restoring requirements after failed project delete")
		}
		return false, err
	}

	s.projects = nextProjects
	s.requirements = nextRequirements
	return true, nil
}

// GetProjectByID returns the project or ErrNotFound.
func (s *JSONStore) GetProjectByID(ctx context.Context, id string) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
}

// FindProjectsByName matches case-insensitively on a name substring.
// An empty term returns all projects.
func (s *JSONStore) FindProjectsByName(ctx context.Context, term string) ([]Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(term) == "" {
		return append([]Project{}, s.projects...), nil
	}

	needle := strings.ToLower(term)
	out := []Project{}
	for _, p := range s.projects {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListProjects returns all projects in load order.
func (s *JSONStore) ListProjects(ctx context.Context) ([]Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Project{}, s.projects...), nil
}

// --- Requirements ---

// CreateRequirement assigns an id, the default draft status, and
// timestamps, then persists the collection.
func (s *JSONStore) CreateRequirement(ctx context.Context, r NewRequirement) (Requirement, error) {
	if err := r.Validate(); err != nil {
		return Requirement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.projectExists(r.ProjectID) {
		return Requirement{}, fmt.Errorf("project %s: %w", r.ProjectID, ErrNotFound)
	}

	ts := now()
	requirement := Requirement{
		ID:          newID(),
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Priority:    r.Priority,
		Status:      StatusDraft,
		Tags:        normalizeTags(r.Tags),
		ProjectID:   r.ProjectID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	next := append(append([]Requirement{}, s.requirements...), requirement)
	if err := writeCollection(s.requirementPath(), next); err != nil {
		return Requirement{}, err
	}
	s.requirements = next
	return requirement, nil
}

// UpdateRequirement merges the provided fields. A non-nil Tags replaces
// the whole tag set: the stored set is reconciled so that it equals the
// desired set exactly, with no duplicates and no stale entries.
func (s *JSONStore) UpdateRequirement(ctx context.Context, id string, upd RequirementUpdate) (Requirement, error) {
	if err := upd.Validate(); err != nil {
		return Requirement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.requirements {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Requirement{}, fmt.Errorf("requirement %s: %w", id, ErrNotFound)
	}

	next := append([]Requirement{}, s.requirements...)
	req := next[idx]
	if upd.Title != nil {
		req.Title = *upd.Title
	}
	if upd.Description != nil {
		req.Description = *upd.Description
	}
	if upd.Type != nil {
		req.Type = *upd.Type
	}
	if upd.Priority != nil {
		req.Priority = *upd.Priority
	}
	if upd.Status != nil {
		req.Status = *upd.Status
	}
	if upd.Tags != nil {
		desired := normalizeTags(*upd.Tags)
		toAdd, toRemove := diffTags(req.Tags, desired)
		req.Tags = applyTagDiff(req.Tags, toAdd, toRemove)
	}
	req.UpdatedAt = now()
	next[idx] = req

	if err := writeCollection(s.requirementPath(), next); err != nil {
		return Requirement{}, err
	}
	s.requirements = next
	return req, nil
}

// DeleteRequirement removes a single requirement. Returns false if the
// id was absent.
func (s *JSONStore) DeleteRequirement(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, r := range s.requirements {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := append([]Requirement{}, s.requirements[:idx]...)
	next = append(next, s.requirements[idx+1:]...)
	if err := writeCollection(s.requirementPath(), next); err != nil {
		return false, err
	}
	s.requirements = next
	return true, nil
}

// ListRequirements returns all requirements with their embedded tags.
func (s *JSONStore) ListRequirements(ctx context.Context) ([]Requirement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Requirement{}, s.requirements...), nil
}

// ListRequirementsByProject returns the requirements owned by projectID.
func (s *JSONStore) ListRequirementsByProject(ctx context.Context, projectID string) ([]Requirement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Requirement{}
	for _, r := range s.requirements {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

// projectExists must be called with the mutex held.
func (s *JSONStore) projectExists(id string) bool {
	for _, p := range s.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

// applyTagDiff applies removals then additions to a tag list,
// preserving the order of surviving entries.
func applyTagDiff(current, toAdd, toRemove []string) []string {
	removed := make(map[string]struct{}, len(toRemove))
	for _, t := range toRemove {
		removed[t] = struct{}{}
	}
	out := make([]string, 0, len(current)+len(toAdd))
	for _, t := range current {
		if _, ok := removed[t]; !ok {
			out = append(out, t)
		}
	}
	return append(out, toAdd...)
}
