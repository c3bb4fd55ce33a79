package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reqwire/reqwire/internal/storage"
)

// CreateProjectTool handles the create-project MCP tool.
type CreateProjectTool struct {
	store storage.Store
}

// NewCreateProjectTool creates a CreateProjectTool.
func NewCreateProjectTool(store storage.Store) *CreateProjectTool {
	return &CreateProjectTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("create-project",
		mcp.WithDescription("Create a new project to group requirements under. "+
			"Returns the created project with its generated id."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("description",
			mcp.Description("What the project is about"),
		),
	)
}

// Handle processes the create-project tool call.
func (t *CreateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := storage.NewProject{
		Name:        req.GetString("name", ""),
		Description: req.GetString("description", ""),
	}

	project, err := t.store.CreateProject(ctx, input)
	if err != nil {
		return storeErrResult("creating project", err)
	}
	return jsonResult(project)
}

// UpdateProjectTool handles the update-project MCP tool.
type UpdateProjectTool struct {
	store storage.Store
}

// NewUpdateProjectTool creates an UpdateProjectTool.
func NewUpdateProjectTool(store storage.Store) *UpdateProjectTool {
	return &UpdateProjectTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("update-project",
		mcp.WithDescription("Update a project's name or description. "+
			"Only the fields you pass are changed."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Project id"),
		),
		mcp.WithString("name",
			mcp.Description("New project name"),
		),
		mcp.WithString("description",
			mcp.Description("New project description"),
		),
	)
}

// Handle processes the update-project tool call.
func (t *UpdateProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	var upd storage.ProjectUpdate
	args := req.GetArguments()
	if _, ok := args["name"]; ok {
		name := req.GetString("name", "")
		upd.Name = &name
	}
	if _, ok := args["description"]; ok {
		desc := req.GetString("description", "")
		upd.Description = &desc
	}

	project, err := t.store.UpdateProject(ctx, id, upd)
	if err != nil {
		return storeErrResult("updating project", err)
	}
	return jsonResult(project)
}

// DeleteProjectTool handles the delete-project MCP tool.
type DeleteProjectTool struct {
	store storage.Store
}

// NewDeleteProjectTool creates a DeleteProjectTool.
func NewDeleteProjectTool(store storage.Store) *DeleteProjectTool {
	return &DeleteProjectTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("delete-project",
		mcp.WithDescription("Delete a project and every requirement that belongs to it."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Project id"),
		),
	)
}

// Handle processes the delete-project tool call.
func (t *DeleteProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	deleted, err := t.store.DeleteProject(ctx, id)
	if err != nil {
		return storeErrResult("deleting project", err)
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("project %s not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Project %s and its requirements were deleted.", id)), nil
}

// GetProjectTool handles the get-project MCP tool.
type GetProjectTool struct {
	store storage.Store
}

// NewGetProjectTool creates a GetProjectTool.
func NewGetProjectTool(store storage.Store) *GetProjectTool {
	return &GetProjectTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GetProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("get-project",
		mcp.WithDescription("Fetch a single project by id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Project id"),
		),
	)
}

// Handle processes the get-project tool call.
func (t *GetProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	project, err := t.store.GetProjectByID(ctx, id)
	if err != nil {
		return storeErrResult("getting project", err)
	}
	return jsonResult(project)
}

// FindProjectsTool handles the find-projects MCP tool.
type FindProjectsTool struct {
	store storage.Store
}

// NewFindProjectsTool creates a FindProjectsTool.
func NewFindProjectsTool(store storage.Store) *FindProjectsTool {
	return &FindProjectsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *FindProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("find-projects",
		mcp.WithDescription("Find projects whose name contains the search term "+
			"(case-insensitive). An empty term lists every project."),
		mcp.WithString("name",
			mcp.Description("Substring to match against project names"),
		),
	)
}

// Handle processes the find-projects tool call.
func (t *FindProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := req.GetString("name", "")

	projects, err := t.store.FindProjectsByName(ctx, term)
	if err != nil {
		return storeErrResult("finding projects", err)
	}
	return jsonResult(projects)
}
