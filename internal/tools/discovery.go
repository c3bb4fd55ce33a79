package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reqwire/reqwire/internal/discovery"
	"github.com/reqwire/reqwire/internal/storage"
)

// GuidedDiscoveryTool handles the guided-requirement-discovery MCP tool.
// It walks the caller through a staged interview, returning the question
// bank for the requested stage plus the accumulated responses.
type GuidedDiscoveryTool struct {
	store storage.Store
}

// NewGuidedDiscoveryTool creates a GuidedDiscoveryTool.
func NewGuidedDiscoveryTool(store storage.Store) *GuidedDiscoveryTool {
	return &GuidedDiscoveryTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GuidedDiscoveryTool) Definition() mcp.Tool {
	return mcp.NewTool("guided-requirement-discovery",
		mcp.WithDescription("Start or continue a staged requirements interview for a project. "+
			"Returns the questions for the requested stage; pass the collected answers back "+
			"through process-discovery-response."),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("Project the discovered requirements will belong to"),
		),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("Problem domain, e.g. 'e-commerce' or 'healthcare'"),
		),
		mcp.WithString("stage",
			mcp.Description("Interview stage to run"),
			mcp.Enum("initial", "stakeholders", "features", "constraints", "quality", "finalize"),
		),
		mcp.WithString("context",
			mcp.Description("Extra context to carry into the questions"),
		),
		mcp.WithString("previousResponses",
			mcp.Description("JSON object of stage->answer collected so far"),
		),
	)
}

// Handle processes the guided-requirement-discovery tool call.
func (t *GuidedDiscoveryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("projectId", "")
	domain := req.GetString("domain", "")
	if projectID == "" {
		return mcp.NewToolResultError("'projectId' is required"), nil
	}
	if domain == "" {
		return mcp.NewToolResultError("'domain' is required"), nil
	}

	// Fail early on a bad project id instead of at the end of the
	// interview.
	if _, err := t.store.GetProjectByID(ctx, projectID); err != nil {
		return storeErrResult("loading project", err)
	}

	stage := discovery.Stage(req.GetString("stage", string(discovery.StageInitial)))
	guide := discovery.Guide(stage)
	responses := parseResponses(req.GetString("previousResponses", ""))

	result := map[string]any{
		"title":             guide.Title,
		"description":       guide.Description,
		"questions":         guide.Questions,
		"domain":            domain,
		"context":           req.GetString("context", ""),
		"previousResponses": responses,
		"nextStage":         discovery.NextStage(stage),
		"projectId":         projectID,
	}
	return jsonResult(result)
}

// ProcessDiscoveryResponseTool handles the process-discovery-response
// MCP tool. It records the answer for one stage and either hands back
// the next stage or, after finalize, mines all answers into stored
// requirements.
type ProcessDiscoveryResponseTool struct {
	store storage.Store
}

// NewProcessDiscoveryResponseTool creates a ProcessDiscoveryResponseTool.
func NewProcessDiscoveryResponseTool(store storage.Store) *ProcessDiscoveryResponseTool {
	return &ProcessDiscoveryResponseTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProcessDiscoveryResponseTool) Definition() mcp.Tool {
	return mcp.NewTool("process-discovery-response",
		mcp.WithDescription("Record the answer for one discovery stage. Returns the next stage "+
			"to run, or, when the interview is complete, creates the extracted requirements."),
		mcp.WithString("stage",
			mcp.Required(),
			mcp.Description("Stage the response answers"),
			mcp.Enum("initial", "stakeholders", "features", "constraints", "quality", "finalize"),
		),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("Problem domain of the interview"),
		),
		mcp.WithString("response",
			mcp.Required(),
			mcp.Description("The answer text for this stage"),
		),
		mcp.WithString("previousResponses",
			mcp.Description("JSON object of stage->answer collected so far"),
		),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("Project the discovered requirements will belong to"),
		),
	)
}

// Handle processes the process-discovery-response tool call.
func (t *ProcessDiscoveryResponseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stage := discovery.Stage(req.GetString("stage", ""))
	domain := req.GetString("domain", "")
	response := req.GetString("response", "")
	projectID := req.GetString("projectId", "")
	if !stage.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown stage %q", stage)), nil
	}
	if response == "" {
		return mcp.NewToolResultError("'response' is required"), nil
	}
	if projectID == "" {
		return mcp.NewToolResultError("'projectId' is required"), nil
	}

	responses := parseResponses(req.GetString("previousResponses", ""))
	responses[stage] = response

	next := discovery.NextStage(stage)
	if next != discovery.StageComplete {
		updated, err := json.Marshal(responses)
		if err != nil {
			return nil, fmt.Errorf("encoding responses: %w", err)
		}
		result := map[string]any{
			"status":           "in_progress",
			"nextStage":        next,
			"responses":        responses,
			"updatedResponses": string(updated),
			"promptToInvoke":   "guided-discovery-followup",
			"promptParams": map[string]string{
				"stage":             string(stage),
				"domain":            domain,
				"currentResponse":   response,
				"previousResponses": string(updated),
				"projectId":         projectID,
			},
		}
		return jsonResult(result)
	}

	created, err := t.createFromResponses(ctx, projectID, responses)
	if err != nil {
		return storeErrResult("creating requirements", err)
	}

	result := map[string]any{
		"status":       "complete",
		"message":      fmt.Sprintf("Discovery process complete! Created %d requirements.", len(created)),
		"requirements": created,
		"responses":    responses,
	}
	return jsonResult(result)
}

func (t *ProcessDiscoveryResponseTool) createFromResponses(ctx context.Context, projectID string, responses map[discovery.Stage]string) ([]storage.Requirement, error) {
	drafts := discovery.ExtractRequirements(responses)
	created := make([]storage.Requirement, 0, len(drafts))
	for _, draft := range drafts {
		requirement, err := t.store.CreateRequirement(ctx, storage.NewRequirement{
			Title:       draft.Title,
			Description: draft.Description,
			Type:        draft.Type,
			Priority:    draft.Priority,
			ProjectID:   projectID,
			Tags:        draft.Tags,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, requirement)
	}
	return created, nil
}

// GenerateFromDiscoveryTool handles the generate-requirements-from-discovery
// MCP tool. It mines a completed set of interview answers into stored
// requirements without walking the stages again.
type GenerateFromDiscoveryTool struct {
	store storage.Store
}

// NewGenerateFromDiscoveryTool creates a GenerateFromDiscoveryTool.
func NewGenerateFromDiscoveryTool(store storage.Store) *GenerateFromDiscoveryTool {
	return &GenerateFromDiscoveryTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateFromDiscoveryTool) Definition() mcp.Tool {
	return mcp.NewTool("generate-requirements-from-discovery",
		mcp.WithDescription("Generate requirements from a finished discovery interview. "+
			"Pass the full stage->answer map as JSON; the extracted requirements are stored "+
			"in the project."),
		mcp.WithString("discoveryResponses",
			mcp.Required(),
			mcp.Description("JSON object of stage->answer"),
		),
		mcp.WithString("projectId",
			mcp.Required(),
			mcp.Description("Project the requirements will belong to"),
		),
	)
}

// Handle processes the generate-requirements-from-discovery tool call.
func (t *GenerateFromDiscoveryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("discoveryResponses", "")
	projectID := req.GetString("projectId", "")
	if projectID == "" {
		return mcp.NewToolResultError("'projectId' is required"), nil
	}

	responses := map[discovery.Stage]string{}
	if err := json.Unmarshal([]byte(raw), &responses); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parsing discovery responses: %v", err)), nil
	}

	drafts := discovery.ExtractRequirements(responses)
	created := make([]storage.Requirement, 0, len(drafts))
	for _, draft := range drafts {
		requirement, err := t.store.CreateRequirement(ctx, storage.NewRequirement{
			Title:       draft.Title,
			Description: draft.Description,
			Type:        draft.Type,
			Priority:    draft.Priority,
			ProjectID:   projectID,
			Tags:        draft.Tags,
		})
		if err != nil {
			return storeErrResult("creating requirement", err)
		}
		created = append(created, requirement)
	}

	result := map[string]any{
		"message":      fmt.Sprintf("Successfully created %d requirements", len(created)),
		"requirements": created,
	}
	return jsonResult(result)
}
