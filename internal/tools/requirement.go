package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reqwire/reqwire/internal/discovery"
	"github.com/reqwire/reqwire/internal/storage"
)

// CreateRequirementTool handles the create-requirement MCP tool.
type CreateRequirementTool struct {
	store storage.Store
}

// NewCreateRequirementTool creates a CreateRequirementTool.
func NewCreateRequirementTool(store storage.Store) *CreateRequirementTool {
	return &CreateRequirementTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateRequirementTool) Definition() mcp.Tool {
	return mcp.NewTool("create-requirement",
		mcp.WithDescription("Create a new requirement in a project. "+
			"New requirements start in 'draft' status."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short requirement title"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Full requirement text"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("One of: functional, non-functional, technical, user_story"),
			mcp.Enum("functional", "non-functional", "technical", "user_story"),
		),
		mcp.WithString("priority",
			mcp.Required(),
			mcp.Description("One of: low, medium, high, critical"),
			mcp.Enum("low", "medium", "high", "critical"),
		),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("Project this requirement belongs to"),
		),
		mcp.WithArray("tags",
			mcp.Description("Free-form tags for grouping and search"),
			mcp.WithStringItems(),
		),
	)
}

// Handle processes the create-requirement tool call.
func (t *CreateRequirementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := storage.NewRequirement{
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		Type:        storage.RequirementType(req.GetString("type", "")),
		Priority:    storage.RequirementPriority(req.GetString("priority", "")),
		ProjectID:   req.GetString("projectId", ""),
		Tags:        stringSliceArg(req, "tags"),
	}

	requirement, err := t.store.CreateRequirement(ctx, input)
	if err != nil {
		return storeErrResult("creating requirement", err)
	}
	return jsonResult(requirement)
}

// UpdateRequirementTool handles the update-requirement MCP tool.
type UpdateRequirementTool struct {
	store storage.Store
}

// NewUpdateRequirementTool creates an UpdateRequirementTool.
func NewUpdateRequirementTool(store storage.Store) *UpdateRequirementTool {
	return &UpdateRequirementTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateRequirementTool) Definition() mcp.Tool {
	return mcp.NewTool("update-requirement",
		mcp.WithDescription("Update fields of an existing requirement. "+
			"Only the fields you pass are changed; passing 'tags' replaces the whole tag set."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Requirement id"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("type",
			mcp.Description("One of: functional, non-functional, technical, user_story"),
			mcp.Enum("functional", "non-functional", "technical", "user_story"),
		),
		mcp.WithString("priority",
			mcp.Description("One of: low, medium, high, critical"),
			mcp.Enum("low", "medium", "high", "critical"),
		),
		mcp.WithString("status",
			mcp.Description("One of: draft, proposed, approved, rejected, implemented, verified"),
			mcp.Enum("draft", "proposed", "approved", "rejected", "implemented", "verified"),
		),
		mcp.WithArray("tags",
			mcp.Description("Replacement tag set"),
			mcp.WithStringItems(),
		),
	)
}

// Handle processes the update-requirement tool call.
func (t *UpdateRequirementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	var upd storage.RequirementUpdate
	args := req.GetArguments()
	if _, ok := args["title"]; ok {
		title := req.GetString("title", "")
		upd.Title = &title
	}
	if _, ok := args["description"]; ok {
		desc := req.GetString("description", "")
		upd.Description = &desc
	}
	if _, ok := args["type"]; ok {
		typ := storage.RequirementType(req.GetString("type", ""))
		upd.Type = &typ
	}
	if _, ok := args["priority"]; ok {
		prio := storage.RequirementPriority(req.GetString("priority", ""))
		upd.Priority = &prio
	}
	if _, ok := args["status"]; ok {
		status := storage.RequirementStatus(req.GetString("status", ""))
		upd.Status = &status
	}
	if _, ok := args["tags"]; ok {
		tags := stringSliceArg(req, "tags")
		upd.Tags = &tags
	}

	requirement, err := t.store.UpdateRequirement(ctx, id, upd)
	if err != nil {
		return storeErrResult("updating requirement", err)
	}
	return jsonResult(requirement)
}

// DeleteRequirementTool handles the delete-requirement MCP tool.
type DeleteRequirementTool struct {
	store storage.Store
}

// NewDeleteRequirementTool creates a DeleteRequirementTool.
func NewDeleteRequirementTool(store storage.Store) *DeleteRequirementTool {
	return &DeleteRequirementTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteRequirementTool) Definition() mcp.Tool {
	return mcp.NewTool("delete-requirement",
		mcp.WithDescription("Delete a requirement and its tags."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Requirement id"),
		),
	)
}

// Handle processes the delete-requirement tool call.
func (t *DeleteRequirementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	deleted, err := t.store.DeleteRequirement(ctx, id)
	if err != nil {
		return storeErrResult("deleting requirement", err)
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("requirement %s not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Requirement %s was deleted.", id)), nil
}

// ListProjectRequirementsTool handles the list-project-requirements MCP tool.
type ListProjectRequirementsTool struct {
	store storage.Store
}

// NewListProjectRequirementsTool creates a ListProjectRequirementsTool.
func NewListProjectRequirementsTool(store storage.Store) *ListProjectRequirementsTool {
	return &ListProjectRequirementsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ListProjectRequirementsTool) Definition() mcp.Tool {
	return mcp.NewTool("list-project-requirements",
		mcp.WithDescription("List every requirement that belongs to a project."),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("Project id"),
		),
	)
}

// Handle processes the list-project-requirements tool call.
func (t *ListProjectRequirementsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("projectId", "")
	if projectID == "" {
		return mcp.NewToolResultError("'projectId' is required"), nil
	}

	requirements, err := t.store.ListRequirementsByProject(ctx, projectID)
	if err != nil {
		return storeErrResult("listing project requirements", err)
	}
	return jsonResult(requirements)
}

// GenerateRequirementTool handles the generate-requirement MCP tool.
// It drafts a structured requirement from a free-text description,
// classifying type and tags by keyword.
type GenerateRequirementTool struct {
	store storage.Store
}

// NewGenerateRequirementTool creates a GenerateRequirementTool.
func NewGenerateRequirementTool(store storage.Store) *GenerateRequirementTool {
	return &GenerateRequirementTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateRequirementTool) Definition() mcp.Tool {
	return mcp.NewTool("generate-requirement",
		mcp.WithDescription("Generate and store a structured requirement from a free-text "+
			"description. The type and tags are inferred from the wording; the title is "+
			"taken from the first sentence."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Free-text description of the requirement"),
		),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("Project the requirement belongs to"),
		),
	)
}

// Handle processes the generate-requirement tool call.
func (t *GenerateRequirementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	projectID := req.GetString("projectId", "")
	if strings.TrimSpace(description) == "" {
		return mcp.NewToolResultError("'description' is required"), nil
	}
	if projectID == "" {
		return mcp.NewToolResultError("'projectId' is required"), nil
	}

	title := description
	if idx := strings.Index(title, "."); idx > 0 {
		title = title[:idx]
	}
	if len(title) > 100 {
		title = title[:100]
	}

	input := storage.NewRequirement{
		Title:       title,
		Description: description,
		Type:        discovery.SuggestType(description),
		Priority:    storage.PriorityMedium,
		ProjectID:   projectID,
		Tags:        discovery.ExtractTags(description),
	}

	requirement, err := t.store.CreateRequirement(ctx, input)
	if err != nil {
		return storeErrResult("generating requirement", err)
	}
	return jsonResult(requirement)
}
