package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reqwire/reqwire/internal/specdoc"
	"github.com/reqwire/reqwire/internal/storage"
)

// GenerateSpecificationTool handles the generate-specification MCP tool.
// It renders a project's requirements into a specification document.
type GenerateSpecificationTool struct {
	store    storage.Store
	renderer *specdoc.Renderer
}

// NewGenerateSpecificationTool creates a GenerateSpecificationTool.
func NewGenerateSpecificationTool(store storage.Store, renderer *specdoc.Renderer) *GenerateSpecificationTool {
	return &GenerateSpecificationTool{store: store, renderer: renderer}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateSpecificationTool) Definition() mcp.Tool {
	return mcp.NewTool("generate-specification",
		mcp.WithDescription("Render a project's requirements into a specification document, "+
			"grouped by requirement type. Markdown by default; pass format 'json' for a "+
			"structured document."),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("Project to document"),
		),
		mcp.WithString("format",
			mcp.Description("Output format"),
			mcp.Enum("markdown", "json"),
		),
		mcp.WithArray("includeSections",
			mcp.Description("Sections to include: overview, functional, non-functional, "+
				"technical, user-stories, summary. Defaults to all."),
			mcp.WithStringItems(),
		),
	)
}

// Handle processes the generate-specification tool call.
func (t *GenerateSpecificationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("projectId", "")
	if projectID == "" {
		return mcp.NewToolResultError("'projectId' is required"), nil
	}

	project, err := t.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return storeErrResult("loading project", err)
	}
	requirements, err := t.store.ListRequirementsByProject(ctx, projectID)
	if err != nil {
		return storeErrResult("loading requirements", err)
	}

	doc := specdoc.Build(project, requirements,
		time.Now().UTC().Format(time.RFC3339),
		stringSliceArg(req, "includeSections"))

	format := specdoc.Format(req.GetString("format", string(specdoc.FormatMarkdown)))
	rendered, err := t.renderer.Render(doc, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(rendered), nil
}
