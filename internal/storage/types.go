package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequirementType classifies what kind of statement a requirement is.
type RequirementType string

const (
	TypeFunctional    RequirementType = "functional"
	TypeNonFunctional RequirementType = "non-functional"
	TypeTechnical     RequirementType = "technical"
	TypeUserStory     RequirementType = "user_story"
)

// RequirementTypes lists every valid requirement type.
var RequirementTypes = []RequirementType{
	TypeFunctional, TypeNonFunctional, TypeTechnical, TypeUserStory,
}

// Valid reports whether t is a known requirement type.
func (t RequirementType) Valid() bool {
	for _, v := range RequirementTypes {
		if t == v {
			return true
		}
	}
	return false
}

// RequirementPriority ranks how important a requirement is.
type RequirementPriority string

const (
	PriorityLow      RequirementPriority = "low"
	PriorityMedium   RequirementPriority = "medium"
	PriorityHigh     RequirementPriority = "high"
	PriorityCritical RequirementPriority = "critical"
)

// RequirementPriorities lists every valid priority.
var RequirementPriorities = []RequirementPriority{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical,
}

// Valid reports whether p is a known priority.
func (p RequirementPriority) Valid() bool {
	for _, v := range RequirementPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// RequirementStatus tracks a requirement through its review lifecycle.
type RequirementStatus string

const (
	StatusDraft       RequirementStatus = "draft"
	StatusProposed    RequirementStatus = "proposed"
	StatusApproved    RequirementStatus = "approved"
	StatusRejected    RequirementStatus = "rejected"
	StatusImplemented RequirementStatus = "implemented"
	StatusVerified    RequirementStatus = "verified"
)

// RequirementStatuses lists every valid status.
var RequirementStatuses = []RequirementStatus{
	StatusDraft, StatusProposed, StatusApproved,
	StatusRejected, StatusImplemented, StatusVerified,
}

// Valid reports whether s is a known status.
func (s RequirementStatus) Valid() bool {
	for _, v := range RequirementStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Project is a top-level grouping entity that owns zero or more requirements.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Requirement is a single tracked statement of need. Tags are always
// returned fully materialized; callers never see the backing
// representation (embedded array vs. join table).
type Requirement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        RequirementType     `json:"type"`
	Priority    RequirementPriority `json:"priority"`
	Status      RequirementStatus   `json:"status"`
	Tags        []string            `json:"tags"`
	ProjectID   string              `json:"projectId"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
}

// NewProject holds the input for creating a project.
type NewProject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks field constraints before any persistence attempt.
func (p NewProject) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: project name is required", ErrValidation)
	}
	return nil
}

// NewRequirement holds the input for creating a requirement.
// ProjectID is required: every requirement belongs to a project.
type NewRequirement struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        RequirementType     `json:"type"`
	Priority    RequirementPriority `json:"priority"`
	ProjectID   string              `json:"projectId"`
	Tags        []string            `json:"tags,omitempty"`
}

// Validate checks field constraints before any persistence attempt.
func (r NewRequirement) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: requirement title is required", ErrValidation)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: requirement description is required", ErrValidation)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown requirement type %q", ErrValidation, r.Type)
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, r.Priority)
	}
	if strings.TrimSpace(r.ProjectID) == "" {
		return fmt.Errorf("%w: projectId is required", ErrValidation)
	}
	return nil
}

// ProjectUpdate holds partial update fields for a project.
// Nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the supplied fields only.
func (u ProjectUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: project name cannot be empty", ErrValidation)
	}
	return nil
}

// RequirementUpdate holds partial update fields for a requirement.
// Nil fields are left untouched. A non-nil Tags replaces the whole
// tag set; the stored tags are reconciled against it.
type RequirementUpdate struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Type        *RequirementType     `json:"type,omitempty"`
	Priority    *RequirementPriority `json:"priority,omitempty"`
	Status      *RequirementStatus   `json:"status,omitempty"`
	Tags        *[]string            `json:"tags,omitempty"`
}

// Validate checks the supplied fields only.
func (u RequirementUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return fmt.Errorf("%w: requirement title cannot be empty", ErrValidation)
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		return fmt.Errorf("%w: requirement description cannot be empty", ErrValidation)
	}
	if u.Type != nil && !u.Type.Valid() {
		return fmt.Errorf("%w: unknown requirement type %q", ErrValidation, *u.Type)
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, *u.Priority)
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *u.Status)
	}
	return nil
}

// newID returns a fresh opaque identifier. IDs are never reused or mutated.
func newID() string {
	return uuid.NewString()
}

// now returns the current UTC time in the sortable textual form used
// for createdAt/updatedAt. RFC 3339 sorts lexicographically.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
