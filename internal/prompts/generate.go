// Package prompts implements the MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// GenerateRequirementPrompt handles the generate-requirement MCP prompt.
// It asks the AI to turn a free-text description into a structured
// requirement before storing it.
type GenerateRequirementPrompt struct{}

// NewGenerateRequirementPrompt creates a GenerateRequirementPrompt.
func NewGenerateRequirementPrompt() *GenerateRequirementPrompt {
	return &GenerateRequirementPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *GenerateRequirementPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("generate-requirement",
		mcp.WithPromptDescription(
			"Turn a free-text description into a well-formed software requirement "+
				"with a type, priority, tags, and a testable description.",
		),
		mcp.WithArgument("description",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("What the requirement should cover"),
		),
	)
}

// Handle processes the generate-requirement prompt request.
func (p *GenerateRequirementPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	description := ""
	if args := req.Params.Arguments; args != nil {
		description = args["description"]
	}

	return &mcp.GetPromptResult{
		Description: "Generate a structured requirement",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please create a software requirement based on the following description:\n\n"+
						"%s\n\n"+
						"For this requirement, please:\n"+
						"1. Determine if it's a functional, non-functional, technical requirement, or user story\n"+
						"2. Suggest an appropriate priority (low, medium, high, critical)\n"+
						"3. Identify relevant tags\n"+
						"4. Create a clear, concise title\n"+
						"5. Expand the description to be specific and testable\n\n"+
						"Then store it with the create-requirement tool.",
					description,
				)),
			},
		},
	}, nil
}

// AnalyzeRequirementsPrompt handles the analyze-requirements MCP prompt.
type AnalyzeRequirementsPrompt struct{}

// NewAnalyzeRequirementsPrompt creates an AnalyzeRequirementsPrompt.
func NewAnalyzeRequirementsPrompt() *AnalyzeRequirementsPrompt {
	return &AnalyzeRequirementsPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *AnalyzeRequirementsPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("analyze-requirements",
		mcp.WithPromptDescription(
			"Review stored requirements for gaps, ambiguity, conflicts, "+
				"and priority problems.",
		),
		mcp.WithArgument("requirementsUri",
			mcp.ArgumentDescription("Resource URI to analyze, e.g. requirements://list or requirements://project/{id}"),
		),
	)
}

// Handle processes the analyze-requirements prompt request.
func (p *AnalyzeRequirementsPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	uri := "requirements://list"
	if args := req.Params.Arguments; args != nil {
		if u, ok := args["requirementsUri"]; ok && u != "" {
			uri = u
		}
	}

	return &mcp.GetPromptResult{
		Description: "Analyze stored requirements",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please analyze the following requirements data and provide insights:\n\n"+
						"1. Identify any gaps or missing requirements\n"+
						"2. Suggest improvements for unclear or ambiguous requirements\n"+
						"3. Highlight potential conflicts or dependencies between requirements\n"+
						"4. Recommend priority adjustments if needed\n"+
						"5. Suggest any additional requirements that might be needed\n\n"+
						"Requirements data can be found at: %s",
					uri,
				)),
			},
		},
	}, nil
}
