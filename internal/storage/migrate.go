package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ImportResult holds counts of records migrated from the JSON files.
type ImportResult struct {
	Projects     int `json:"projects"`
	Requirements int `json:"requirements"`
	Tags         int `json:"tags"`
}

// ImportJSON reads the document-store files under dir and inserts
// equivalent rows into the SQLite store inside a single transaction.
// Existing ids and timestamps are preserved. When archive is true the
// source files are renamed with a .migrated suffix afterwards.
//
// This is a one-time operation for switching backends; it is not part
// of the runtime Store contract.
func (s *SQLiteStore) ImportJSON(ctx context.Context, dir string, archive bool) (ImportResult, error) {
	var result ImportResult

	projects, err := readJSONFile[Project](filepath.Join(dir, projectsFile))
	if err != nil {
		return result, err
	}
	requirements, err := readJSONFile[Requirement](filepath.Join(dir, requirementsFile))
	if err != nil {
		return result, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("storage: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, p := range projects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, name, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return result, fmt.Errorf("storage: import project %s: %w", p.ID, err)
		}
		result.Projects++
	}

	for _, r := range requirements {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO requirements (id, title, description, type, priority, status, project_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Title, r.Description, r.Type, r.Priority, r.Status,
			r.ProjectID, r.CreatedAt, r.UpdatedAt,
		); err != nil {
			return result, fmt.Errorf("storage: import requirement %s: %w", r.ID, err)
		}
		result.Requirements++

		for _, tag := range normalizeTags(r.Tags) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO requirement_tags (requirement_id, tag) VALUES (?, ?)`,
				r.ID, tag,
			); err != nil {
				return result, fmt.Errorf("storage: import tag %q for %s: %w", tag, r.ID, err)
			}
			result.Tags++
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("storage: commit import: %w", err)
	}

	if archive {
		for _, name := range []string{projectsFile, requirementsFile} {
			src := filepath.Join(dir, name)
			if _, err := os.Stat(src); err != nil {
				continue
			}
			if err := os.Rename(src, src+".migrated"); err != nil {
				return result, fmt.Errorf("storage: archive %s: %w", name, err)
			}
		}
	}

	return result, nil
}

// readJSONFile loads a collection file; a missing file is an empty
// collection, matching the document store's cold-start behavior.
func readJSONFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", filepath.Base(path), err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w", filepath.Base(path), err)
	}
	return out, nil
}
