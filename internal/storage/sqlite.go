package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/reqwire/reqwire/internal/storage/migrations"
)

// dbFile is the SQLite database filename under the data directory.
const dbFile = "requirements.db"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore persists entities as normalized rows across three tables.
// Tag rows are a materialization of each requirement's tag set, kept in
// sync transactionally; project deletion cascades through foreign keys.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database under dir and
// applies any pending schema migrations. The pragmas ride in the DSN
// rather than a one-off Exec: foreign_keys and busy_timeout are
// per-connection settings, and the cascade deletes depend on every
// pooled connection having them.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}

	dsn := "file:" + filepath.Join(dir, dbFile) +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)"
	db, err := openDB("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("storage: migration provider: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for the one-shot JSON import.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// --- Projects ---

// CreateProject inserts a new project row.
func (s *SQLiteStore) CreateProject(ctx context.Context, p NewProject) (Project, error) {
	if err := p.Validate(); err != nil {
		return Project{}, err
	}

	ts := now()
	project := Project{
		ID:          newID(),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.Description, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return Project{}, fmt.Errorf("storage: insert project: %w", err)
	}
	return project, nil
}

// UpdateProject merges only the provided fields and refreshes updated_at.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (Project, error) {
	if err := upd.Validate(); err != nil {
		return Project{}, err
	}

	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return Project{}, err
	}

	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	project.UpdatedAt = now()

	_, err = s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		project.Name, project.Description, project.UpdatedAt, id,
	)
	if err != nil {
		return Project{}, fmt.Errorf("storage: update project: %w", err)
	}
	return project, nil
}

// DeleteProject deletes the project row; the ON DELETE CASCADE
// constraints remove its requirements and, transitively, their tag
// rows. A single row delete, not an application-level fan-out.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("storage: delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: delete project: %w", err)
	}
	return n > 0, nil
}

// GetProjectByID returns the project or ErrNotFound.
func (s *SQLiteStore) GetProjectByID(ctx context.Context, id string) (Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects WHERE id = ?`, id)

	var p Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return Project{}, fmt.Errorf("storage: get project: %w", err)
	}
	return p, nil
}

// FindProjectsByName performs a case-insensitive pattern match
// evaluated by the engine. An empty term returns all projects.
func (s *SQLiteStore) FindProjectsByName(ctx context.Context, term string) ([]Project, error) {
	if strings.TrimSpace(term) == "" {
		return s.ListProjects(ctx)
	}
	return s.queryProjects(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM projects
		 WHERE LOWER(name) LIKE '%' || LOWER(?) || '%'
		 ORDER BY created_at`,
		term,
	)
}

// ListProjects returns all projects.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]Project, error) {
	return s.queryProjects(ctx,
		`SELECT id, name, description, created_at, updated_at FROM projects ORDER BY created_at`)
}

func (s *SQLiteStore) queryProjects(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query projects: %w", err)
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: query projects: %w", err)
	}
	return out, nil
}

// --- Requirements ---

// CreateRequirement inserts the requirement row and its tag rows in a
// single transaction, so a failure partway through leaves neither a
// dangling requirement nor orphan tags.
func (s *SQLiteStore) CreateRequirement(ctx context.Context, r NewRequirement) (Requirement, error) {
	if err := r.Validate(); err != nil {
		return Requirement{}, err
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Requirement{}, fmt.Errorf("storage: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, r.ProjectID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Requirement{}, fmt.Errorf("project %s: %w", r.ProjectID, ErrNotFound)
	}
	if err != nil {
		return Requirement{}, fmt.Errorf("storage: check project: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO requirements (id, title, description, type, priority, status, project_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		requirement.ID, requirement.Title, requirement.Description,
		requirement.Type, requirement.Priority, requirement.Status,
		requirement.ProjectID, requirement.CreatedAt, requirement.UpdatedAt,
	)
	if err != nil {
		return Requirement{}, fmt.Errorf("storage: insert requirement: %w", err)
	}

	for _, tag := range requirement.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO requirement_tags (requirement_id, tag) VALUES (?, ?)`,
			requirement.ID, tag,
		); err != nil {
			return Requirement{}, fmt.Errorf("storage: insert tag %q: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Requirement{}, fmt.Errorf("storage: commit: %w", err)
	}
	return requirement, nil
}

// UpdateRequirement merges the provided fields; when a new tag set is
// supplied, the current rows are diffed against it and the minimal
// deletes and inserts are applied in the same transaction as the row
// update. The final stored set equals the desired set exactly.
func (s *SQLiteStore) UpdateRequirement(ctx context.Context, id string, upd RequirementUpdate) (Requirement, error) {
	if err := upd.Validate(); err != nil {
		return Requirement{}, err
	}

	req, err := s.getRequirement(ctx, id)
	if err != nil {
		return Requirement{}, err
	}

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
	req.UpdatedAt = now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Requirement{}, fmt.Errorf("storage: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`UPDATE requirements
		 SET title = ?, description = ?, type = ?, priority = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		req.Title, req.Description, req.Type, req.Priority, req.Status, req.UpdatedAt, id,
	)
	if err != nil {
		return Requirement{}, fmt.Errorf("storage: update requirement: %w", err)
	}

	if upd.Tags != nil {
		desired := normalizeTags(*upd.Tags)
		toAdd, toRemove := diffTags(req.Tags, desired)

		for _, tag := range toRemove {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM requirement_tags WHERE requirement_id = ? AND tag = ?`,
				id, tag,
			); err != nil {
				return Requirement{}, fmt.Errorf("storage: delete tag %q: %w", tag, err)
			}
		}
		for _, tag := range toAdd {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO requirement_tags (requirement_id, tag) VALUES (?, ?)`,
				id, tag,
			); err != nil {
				return Requirement{}, fmt.Errorf("storage: insert tag %q: %w", tag, err)
			}
		}
		req.Tags = applyTagDiff(req.Tags, toAdd, toRemove)
	}

	if err := tx.Commit(); err != nil {
		return Requirement{}, fmt.Errorf("storage: commit: %w", err)
	}
	return req, nil
}

// DeleteRequirement deletes the requirement row; its tag rows are
// removed by cascade. Returns false if the id was absent.
func (s *SQLiteStore) DeleteRequirement(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requirements WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("storage: delete requirement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: delete requirement: %w", err)
	}
	return n > 0, nil
}

// ListRequirements returns all requirements with their tags resolved.
func (s *SQLiteStore) ListRequirements(ctx context.Context) ([]Requirement, error) {
	return s.queryRequirements(ctx,
		`SELECT id, title, description, type, priority, status, project_id, created_at, updated_at
		 FROM requirements ORDER BY created_at`)
}

// ListRequirementsByProject returns the requirements owned by projectID,
// tags resolved.
func (s *SQLiteStore) ListRequirementsByProject(ctx context.Context, projectID string) ([]Requirement, error) {
	return s.queryRequirements(ctx,
		`SELECT id, title, description, type, priority, status, project_id, created_at, updated_at
		 FROM requirements WHERE project_id = ? ORDER BY created_at`,
		projectID,
	)
}

// getRequirement loads one requirement row plus its tag rows.
func (s *SQLiteStore) getRequirement(ctx context.Context, id string) (Requirement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, type, priority, status, project_id, created_at, updated_at
		 FROM requirements WHERE id = ?`, id)

	var r Requirement
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Type, &r.Priority, &r.Status,
		&r.ProjectID, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Requirement{}, fmt.Errorf("requirement %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Requirement{}, fmt.Errorf("storage: get requirement: %w", err)
	}

	r.Tags = []string{}
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag FROM requirement_tags WHERE requirement_id = ? ORDER BY tag`, id)
	if err != nil {
		return Requirement{}, fmt.Errorf("storage: query tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return Requirement{}, fmt.Errorf("storage: scan tag: %w", err)
		}
		r.Tags = append(r.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return Requirement{}, fmt.Errorf("storage: query tags: %w", err)
	}
	return r, nil
}

// queryRequirements runs a requirement query and resolves tags for the
// whole result set with a single join, grouped in memory.
func (s *SQLiteStore) queryRequirements(ctx context.Context, query string, args ...any) ([]Requirement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query requirements: %w", err)
	}
	defer rows.Close()

	out := []Requirement{}
	index := map[string]int{}
	for rows.Next() {
		var r Requirement
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Type, &r.Priority, &r.Status,
			&r.ProjectID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan requirement: %w", err)
		}
		r.Tags = []string{}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: query requirements: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	tagRows, err := s.db.QueryContext(ctx,
		`SELECT requirement_id, tag FROM requirement_tags ORDER BY requirement_id, tag`)
	if err != nil {
		return nil, fmt.Errorf("storage: query tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var reqID, tag string
		if err := tagRows.Scan(&reqID, &tag); err != nil {
			return nil, fmt.Errorf("storage: scan tag: %w", err)
		}
		if i, ok := index[reqID]; ok {
			out[i].Tags = append(out[i].Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("storage: query tags: %w", err)
	}
	return out, nil
}
