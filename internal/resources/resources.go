// Package resources implements the MCP resource handlers.
//
// Resources expose read-only views of the stored projects and
// requirements under the requirements:// and projects:// URI schemes.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reqwire/reqwire/internal/storage"
)

// Handler serves the requirements:// and projects:// resources.
type Handler struct {
	store storage.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

// RequirementsListResource returns the definition for requirements://list.
func (h *Handler) RequirementsListResource() mcp.Resource {
	return mcp.NewResource(
		"requirements://list",
		"All Requirements",
		mcp.WithResourceDescription("Every stored requirement across all projects"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleRequirementsList returns every requirement as JSON.
func (h *Handler) HandleRequirementsList(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	requirements, err := h.store.ListRequirements(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, requirements)
}

// RequirementsSummaryResource returns the definition for requirements://summary.
func (h *Handler) RequirementsSummaryResource() mcp.Resource {
	return mcp.NewResource(
		"requirements://summary",
		"Requirements Summary",
		mcp.WithResourceDescription("Counts by type, status, and priority, plus the most used tags"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleRequirementsSummary returns aggregate statistics over all
// stored requirements.
func (h *Handler) HandleRequirementsSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	requirements, err := h.store.ListRequirements(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	byType := map[string]int{}
	byStatus := map[string]int{}
	byPriority := map[string]int{}
	tagCounts := map[string]int{}
	for _, r := range requirements {
		byType[string(r.Type)]++
		byStatus[string(r.Status)]++
		byPriority[string(r.Priority)]++
		for _, tag := range r.Tags {
			tagCounts[tag]++
		}
	}

	summary := map[string]any{
		"totalRequirements": len(requirements),
		"byType":            byType,
		"byStatus":          byStatus,
		"byPriority":        byPriority,
		"topTags":           topTags(tagCounts, 10),
	}
	return jsonResource(req.Params.URI, summary)
}

// RequirementTemplate returns the template for requirements://{id}.
func (h *Handler) RequirementTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"requirements://{id}",
		"Requirement by ID",
		mcp.WithTemplateDescription("A single requirement"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleRequirement resolves requirements://{id}. The id segment is the
// remainder of the URI after the scheme.
func (h *Handler) HandleRequirement(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(req.Params.URI, "requirements://")
	requirements, err := h.store.ListRequirements(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	for _, r := range requirements {
		if r.ID == id {
			return jsonResource(req.Params.URI, r)
		}
	}
	return errorResource(req.Params.URI, fmt.Sprintf("requirement %s not found", id)), nil
}

// RequirementsByTypeTemplate returns the template for requirements://type/{type}.
func (h *Handler) RequirementsByTypeTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"requirements://type/{type}",
		"Requirements by Type",
		mcp.WithTemplateDescription("Requirements filtered by type"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleRequirementsByType resolves requirements://type/{type}.
func (h *Handler) HandleRequirementsByType(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	typ := storage.RequirementType(strings.TrimPrefix(req.Params.URI, "requirements://type/"))
	if !typ.Valid() {
		return errorResource(req.Params.URI, fmt.Sprintf("unknown requirement type %q", typ)), nil
	}
	return h.filtered(ctx, req.Params.URI, func(r storage.Requirement) bool {
		return r.Type == typ
	})
}

// RequirementsByStatusTemplate returns the template for requirements://status/{status}.
func (h *Handler) RequirementsByStatusTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"requirements://status/{status}",
		"Requirements by Status",
		mcp.WithTemplateDescription("Requirements filtered by status"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleRequirementsByStatus resolves requirements://status/{status}.
func (h *Handler) HandleRequirementsByStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	status := storage.RequirementStatus(strings.TrimPrefix(req.Params.URI, "requirements://status/"))
	if !status.Valid() {
		return errorResource(req.Params.URI, fmt.Sprintf("unknown status %q", status)), nil
	}
	return h.filtered(ctx, req.Params.URI, func(r storage.Requirement) bool {
		return r.Status == status
	})
}

// RequirementsByPriorityTemplate returns the template for requirements://priority/{priority}.
func (h *Handler) RequirementsByPriorityTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"requirements://priority/{priority}",
		"Requirements by Priority",
		mcp.WithTemplateDescription("Requirements filtered by priority"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleRequirementsByPriority resolves requirements://priority/{priority}.
func (h *Handler) HandleRequirementsByPriority(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	priority := storage.RequirementPriority(strings.TrimPrefix(req.Params.URI, "requirements://priority/"))
	if !priority.Valid() {
		return errorResource(req.Params.URI, fmt.Sprintf("unknown priority %q", priority)), nil
	}
	return h.filtered(ctx, req.Params.URI, func(r storage.Requirement) bool {
		return r.Priority == priority
	})
}

// RequirementsByProjectTemplate returns the template for requirements://project/{projectId}.
func (h *Handler) RequirementsByProjectTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"requirements://project/{projectId}",
		"Requirements by Project",
		mcp.WithTemplateDescription("Requirements belonging to one project"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleRequirementsByProject resolves requirements://project/{projectId}.
func (h *Handler) HandleRequirementsByProject(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectID := strings.TrimPrefix(req.Params.URI, "requirements://project/")
	requirements, err := h.store.ListRequirementsByProject(ctx, projectID)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, requirements)
}

// RequirementsByTagTemplate returns the template for requirements://tag/{tag}.
func (h *Handler) RequirementsByTagTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"requirements://tag/{tag}",
		"Requirements by Tag",
		mcp.WithTemplateDescription("Requirements carrying a given tag"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleRequirementsByTag resolves requirements://tag/{tag}.
func (h *Handler) HandleRequirementsByTag(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tag := strings.TrimPrefix(req.Params.URI, "requirements://tag/")
	return h.filtered(ctx, req.Params.URI, func(r storage.Requirement) bool {
		for _, t := range r.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

// ProjectsListResource returns the definition for projects://list.
func (h *Handler) ProjectsListResource() mcp.Resource {
	return mcp.NewResource(
		"projects://list",
		"All Projects",
		mcp.WithResourceDescription("Every stored project"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProjectsList returns every project as JSON.
func (h *Handler) HandleProjectsList(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projects, err := h.store.ListProjects(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, projects)
}

// ProjectTemplate returns the template for projects://{id}.
func (h *Handler) ProjectTemplate() mcp.ResourceTemplate {
	return mcp.NewResourceTemplate(
		"projects://{id}",
		"Project by ID",
		mcp.WithTemplateDescription("A single project"),
		mcp.WithTemplateMIMEType("application/json"),
	)
}

// HandleProject resolves projects://{id}.
func (h *Handler) HandleProject(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(req.Params.URI, "projects://")
	project, err := h.store.GetProjectByID(ctx, id)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, project)
}

// filtered lists all requirements and keeps those matching keep.
func (h *Handler) filtered(ctx context.Context, uri string, keep func(storage.Requirement) bool) ([]mcp.ResourceContents, error) {
	requirements, err := h.store.ListRequirements(ctx)
	if err != nil {
		return errorResource(uri, err.Error()), nil
	}
	matched := make([]storage.Requirement, 0, len(requirements))
	for _, r := range requirements {
		if keep(r) {
			matched = append(matched, r)
		}
	}
	return jsonResource(uri, matched)
}

// topTags returns the n most used tags with their counts.
func topTags(counts map[string]int, n int) map[string]int {
	type entry struct {
		tag   string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for tag, count := range counts {
		entries = append(entries, entry{tag, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].tag < entries[j].tag
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	top := make(map[string]int, len(entries))
	for _, e := range entries {
		top[e.tag] = e.count
	}
	return top
}

// jsonResource marshals v into a single JSON resource.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
