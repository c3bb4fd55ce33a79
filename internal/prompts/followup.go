package prompts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DiscoveryFollowupPrompt handles the guided-discovery-followup MCP
// prompt. It is invoked between discovery stages to have the AI probe
// the user's last answer before moving on.
type DiscoveryFollowupPrompt struct{}

// NewDiscoveryFollowupPrompt creates a DiscoveryFollowupPrompt.
func NewDiscoveryFollowupPrompt() *DiscoveryFollowupPrompt {
	return &DiscoveryFollowupPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DiscoveryFollowupPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("guided-discovery-followup",
		mcp.WithPromptDescription(
			"Dig deeper into the user's last discovery answer with targeted "+
				"follow-up questions before advancing to the next stage.",
		),
		mcp.WithArgument("stage",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("Stage the response answers"),
		),
		mcp.WithArgument("domain",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("Problem domain of the interview"),
		),
		mcp.WithArgument("currentResponse",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("The answer the user just gave"),
		),
		mcp.WithArgument("previousResponses",
			mcp.ArgumentDescription("JSON object of stage->answer collected so far"),
		),
	)
}

// Handle processes the guided-discovery-followup prompt request.
func (p *DiscoveryFollowupPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	stage := args["stage"]
	domain := args["domain"]
	currentResponse := args["currentResponse"]

	previous := map[string]string{}
	if raw := args["previousResponses"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &previous); err != nil {
			previous = map[string]string{}
		}
	}
	previousJSON, err := json.MarshalIndent(previous, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding previous responses: %w", err)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Follow up on %s stage response", stage),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"You are a requirements engineering expert guiding a discovery session for a %s project.\n"+
						"The current stage of the discovery process is: %s\n\n"+
						"The user has just provided the following response:\n"+
						"\"\"\"\n%s\n\"\"\"\n\n"+
						"Previous responses from earlier stages:\n"+
						"\"\"\"\n%s\n\"\"\"\n\n"+
						"Based on this information:\n"+
						"1. Identify any gaps, ambiguities, or areas that need more clarification in the current response\n"+
						"2. Generate 2-3 targeted follow-up questions to deepen the requirements discovery\n"+
						"3. Suggest any aspects of %s that the user might have overlooked\n"+
						"4. Provide a brief summary of what you've learned from their response\n\n"+
						"Keep your tone conversational, focus on uncovering detailed, specific requirements, "+
						"and help the user think more deeply about their needs.",
					domain, stage, currentResponse, previousJSON, domain,
				)),
			},
		},
	}, nil
}

// RequirementsDocumentPrompt handles the create-requirements-document
// MCP prompt.
type RequirementsDocumentPrompt struct{}

// NewRequirementsDocumentPrompt creates a RequirementsDocumentPrompt.
func NewRequirementsDocumentPrompt() *RequirementsDocumentPrompt {
	return &RequirementsDocumentPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *RequirementsDocumentPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("create-requirements-document",
		mcp.WithPromptDescription(
			"Produce a formal requirements document from stored requirements, "+
				"grouped and formatted for stakeholders.",
		),
		mcp.WithArgument("requirementsUri",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("Resource URI holding the requirements, e.g. requirements://project/{id}"),
		),
		mcp.WithArgument("documentFormat",
			mcp.ArgumentDescription("'markdown' or 'html', defaults to markdown"),
		),
		mcp.WithArgument("includeMetadata",
			mcp.ArgumentDescription("'true' to include status, priority, and tags per requirement"),
		),
	)
}

// Handle processes the create-requirements-document prompt request.
func (p *RequirementsDocumentPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	uri := args["requirementsUri"]
	format := args["documentFormat"]
	if format == "" {
		format = "markdown"
	}

	metadataLine := ""
	if args["includeMetadata"] == "true" {
		metadataLine = "4. Include metadata such as status, priority, and tags for each requirement\n"
	}

	return &mcp.GetPromptResult{
		Description: "Create a requirements document",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please create a formal requirements document in %s format based on the "+
						"requirements data at: %s\n\n"+
						"The document should:\n"+
						"1. Have a professional structure with sections and subsections\n"+
						"2. Group requirements logically by type and related functionality\n"+
						"3. Include a table of contents\n"+
						"%s"+
						"5. Be formatted for readability and professional presentation\n\n"+
						"Please organize the requirements in a way that would make sense to both "+
						"technical and non-technical stakeholders.",
					format, uri, metadataLine,
				)),
			},
		},
	}, nil
}
