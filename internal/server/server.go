// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the storage backend and injects
// it into the tools, prompts, and resources. No business logic lives
// here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/reqwire/reqwire/internal/config"
	"github.com/reqwire/reqwire/internal/prompts"
	"github.com/reqwire/reqwire/internal/resources"
	"github.com/reqwire/reqwire/internal/specdoc"
	"github.com/reqwire/reqwire/internal/storage"
	"github.com/reqwire/reqwire/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the storage backend and must be
// called on shutdown (typically via defer). It is always non-nil.
func New(cfg config.Config, logger zerolog.Logger) (*server.MCPServer, func(), error) {
	store, err := storage.Open(storage.Config{
		Backend: cfg.StorageBackend,
		DataDir: cfg.DataDir,
	}, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("opening storage: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing storage")
		}
	}

	renderer, err := specdoc.NewRenderer()
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("creating specification renderer: %w", err)
	}

	s := server.NewMCPServer(
		"reqwire",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Project tools ---

	createProject := tools.NewCreateProjectTool(store)
	s.AddTool(createProject.Definition(), createProject.Handle)

	updateProject := tools.NewUpdateProjectTool(store)
	s.AddTool(updateProject.Definition(), updateProject.Handle)

	deleteProject := tools.NewDeleteProjectTool(store)
	s.AddTool(deleteProject.Definition(), deleteProject.Handle)

	getProject := tools.NewGetProjectTool(store)
	s.AddTool(getProject.Definition(), getProject.Handle)

	findProjects := tools.NewFindProjectsTool(store)
	s.AddTool(findProjects.Definition(), findProjects.Handle)

	// --- Requirement tools ---

	createRequirement := tools.NewCreateRequirementTool(store)
	s.AddTool(createRequirement.Definition(), createRequirement.Handle)

	updateRequirement := tools.NewUpdateRequirementTool(store)
	s.AddTool(updateRequirement.Definition(), updateRequirement.Handle)

	deleteRequirement := tools.NewDeleteRequirementTool(store)
	s.AddTool(deleteRequirement.Definition(), deleteRequirement.Handle)

	listRequirements := tools.NewListProjectRequirementsTool(store)
	s.AddTool(listRequirements.Definition(), listRequirements.Handle)

	generateRequirement := tools.NewGenerateRequirementTool(store)
	s.AddTool(generateRequirement.Definition(), generateRequirement.Handle)

	// --- Discovery tools ---

	guidedDiscovery := tools.NewGuidedDiscoveryTool(store)
	s.AddTool(guidedDiscovery.Definition(), guidedDiscovery.Handle)

	processResponse := tools.NewProcessDiscoveryResponseTool(store)
	s.AddTool(processResponse.Definition(), processResponse.Handle)

	generateFromDiscovery := tools.NewGenerateFromDiscoveryTool(store)
	s.AddTool(generateFromDiscovery.Definition(), generateFromDiscovery.Handle)

	// --- Specification tool ---

	generateSpecification := tools.NewGenerateSpecificationTool(store, renderer)
	s.AddTool(generateSpecification.Definition(), generateSpecification.Handle)

	// --- Prompts ---

	generatePrompt := prompts.NewGenerateRequirementPrompt()
	s.AddPrompt(generatePrompt.Definition(), generatePrompt.Handle)

	analyzePrompt := prompts.NewAnalyzeRequirementsPrompt()
	s.AddPrompt(analyzePrompt.Definition(), analyzePrompt.Handle)

	followupPrompt := prompts.NewDiscoveryFollowupPrompt()
	s.AddPrompt(followupPrompt.Definition(), followupPrompt.Handle)

	documentPrompt := prompts.NewRequirementsDocumentPrompt()
	s.AddPrompt(documentPrompt.Definition(), documentPrompt.Handle)

	// --- Resources ---

	rh := resources.NewHandler(store)
	s.AddResource(rh.RequirementsListResource(), rh.HandleRequirementsList)
	s.AddResource(rh.RequirementsSummaryResource(), rh.HandleRequirementsSummary)
	s.AddResource(rh.ProjectsListResource(), rh.HandleProjectsList)

	// More specific templates first: requirements://{id} also matches
	// the single-segment tail of the scoped URIs.
	s.AddResourceTemplate(rh.RequirementsByTypeTemplate(), rh.HandleRequirementsByType)
	s.AddResourceTemplate(rh.RequirementsByStatusTemplate(), rh.HandleRequirementsByStatus)
	s.AddResourceTemplate(rh.RequirementsByPriorityTemplate(), rh.HandleRequirementsByPriority)
	s.AddResourceTemplate(rh.RequirementsByProjectTemplate(), rh.HandleRequirementsByProject)
	s.AddResourceTemplate(rh.RequirementsByTagTemplate(), rh.HandleRequirementsByTag)
	s.AddResourceTemplate(rh.RequirementTemplate(), rh.HandleRequirement)
	s.AddResourceTemplate(rh.ProjectTemplate(), rh.HandleProject)

	return s, cleanup, nil
}

// noop is the default cleanup when setup fails before storage opens.
func noop() {}

// serverInstructions tells the AI host how to use the server.
func serverInstructions() string {
	return `You have access to reqwire, a requirements gathering MCP server.

## What reqwire does
reqwire stores software projects and their requirements, runs guided
requirements discovery interviews, and renders specification documents.

## Typical workflow
1. Create a project with create-project (or find one with find-projects)
2. Either:
   - Add requirements directly with create-requirement, or
   - Run a discovery interview: call guided-requirement-discovery for the
     questions of each stage (initial -> stakeholders -> features ->
     constraints -> quality -> finalize), collect the user's answers, and
     feed each one through process-discovery-response. When the interview
     completes, the answers are mined into stored requirements.
3. Refine requirements with update-requirement (status moves draft ->
   proposed -> approved -> implemented -> verified)
4. Render a document with generate-specification

## Rules
- Every requirement belongs to a project: always pass a real projectId
- Requirement types: functional, non-functional, technical, user_story
- Priorities: low, medium, high, critical
- Tags are free-form; passing tags on update replaces the whole set
- Use the requirements:// and projects:// resources for read-only views
  (requirements://summary gives quick statistics)
- Generate real content from the conversation, never placeholder text`
}
