// Package storage implements the persistence core for Reqwire.
//
// Two backends satisfy the same Store interface: a JSON document store
// that keeps whole collections in flat files, and a SQLite store that
// normalizes requirements and tags into rows. Callers never need to
// know which backend is active; every operation returns the canonical
// entity shape with tags fully resolved.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when an operation references an id that does
// not exist. Callers should treat it as "nothing to do", not as a
// system failure.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when caller-supplied data violates field
// constraints. It is surfaced before any persistence attempt; no
// partial write occurs.
var ErrValidation = errors.New("validation error")

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Store is the operation surface the storage core exposes to its
// collaborators (HTTP handlers, MCP tool handlers, migration).
//
// Mutating operations that fail with something other than ErrNotFound
// or ErrValidation indicate the requested state change did not durably
// occur. Listing operations degrade to empty results on a cold store.
type Store interface {
	CreateProject(ctx context.Context, p NewProject) (Project, error)
	UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (Project, error)
	// DeleteProject removes a project and, by cascade, every requirement
	// (and tag) that references it. Returns false if the id was absent.
	DeleteProject(ctx context.Context, id string) (bool, error)
	GetProjectByID(ctx context.Context, id string) (Project, error)
	// FindProjectsByName matches case-insensitively on a substring of the
	// project name. An empty term returns all projects.
	FindProjectsByName(ctx context.Context, term string) ([]Project, error)
	ListProjects(ctx context.Context) ([]Project, error)

	CreateRequirement(ctx context.Context, r NewRequirement) (Requirement, error)
	UpdateRequirement(ctx context.Context, id string, upd RequirementUpdate) (Requirement, error)
	DeleteRequirement(ctx context.Context, id string) (bool, error)
	ListRequirements(ctx context.Context) ([]Requirement, error)
	ListRequirementsByProject(ctx context.Context, projectID string) ([]Requirement, error)

	Close() error
}

// Config holds storage configuration.
type Config struct {
	// Backend selects the storage engine: "sqlite" (default) or "json".
	Backend string
	// DataDir is where the backend keeps its files
	// (requirements.db, or projects.json + requirements.json).
	DataDir string
}

// Open selects and initializes a backend based on cfg.Backend. The
// binding is fixed for the process lifetime; there is no runtime
// switching. Unknown backend names fall back to the JSON document
// store with a warning.
func Open(cfg Config, logger zerolog.Logger) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendSQLite, "":
		logger.Debug().Str("backend", BackendSQLite).Str("dir", cfg.DataDir).Msg("opening storage")
		return OpenSQLite(cfg.DataDir)
	case BackendJSON:
		logger.Debug().Str("backend", BackendJSON).Str("dir", cfg.DataDir).Msg("opening storage")
		return OpenJSON(cfg.DataDir, logger)
	default:
		logger.Warn().Str("backend", cfg.Backend).Msg("unknown storage backend, falling back to json")
		return OpenJSON(cfg.DataDir, logger)
	}
}
