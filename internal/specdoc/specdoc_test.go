package specdoc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqwire/reqwire/internal/storage"
)

func testProject() storage.Project {
	return storage.Project{
		ID:          "p1",
		Name:        "Webshop",
		Description: "An online store",
		CreatedAt:   "2025-01-01T00:00:00Z",
		UpdatedAt:   "2025-01-01T00:00:00Z",
	}
}

func testRequirements() []storage.Requirement {
	return []storage.Requirement{
		{
			ID: "r1", Title: "Checkout", Description: "Users can check out a cart.",
			Type: storage.TypeFunctional, Priority: storage.PriorityHigh,
			Status: storage.StatusApproved, ProjectID: "p1", Tags: []string{"payment"},
		},
		{
			ID: "r2", Title: "Fast pages", Description: "Pages load within a second.",
			Type: storage.TypeNonFunctional, Priority: storage.PriorityMedium,
			Status: storage.StatusDraft, ProjectID: "p1", Tags: []string{},
		},
		{
			ID: "r3", Title: "As a shopper, I want saved carts", Description: "Carts persist between visits.",
			Type: storage.TypeUserStory, Priority: storage.PriorityLow,
			Status: storage.StatusDraft, ProjectID: "p1", Tags: []string{},
		},
	}
}

func TestBuildGroupsByType(t *testing.T) {
	doc := Build(testProject(), testRequirements(), "2025-06-01T00:00:00Z", nil)

	assert.Equal(t, AllSections, doc.Sections)
	assert.Equal(t, 3, doc.TotalCount)
	require.Len(t, doc.Functional, 1)
	require.Len(t, doc.NonFunc, 1)
	require.Len(t, doc.UserStories, 1)
	assert.Empty(t, doc.Technical)
	assert.Equal(t, 2, doc.ByStatus[string(storage.StatusDraft)])
	assert.Equal(t, 1, doc.ByPriority[string(storage.PriorityHigh)])
}

func TestRenderMarkdown(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	doc := Build(testProject(), testRequirements(), "2025-06-01T00:00:00Z", nil)
	out, err := renderer.Render(doc, FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, out, "# Webshop — Specification")
	assert.Contains(t, out, "## Overview")
	assert.Contains(t, out, "An online store")
	assert.Contains(t, out, "## Functional Requirements")
	assert.Contains(t, out, "### Checkout")
	assert.Contains(t, out, "**Tags:** payment")
	assert.Contains(t, out, "## Non-Functional Requirements")
	assert.Contains(t, out, "## User Stories")
	assert.Contains(t, out, "## Summary")
	// No technical requirements, so no technical section.
	assert.NotContains(t, out, "## Technical Requirements")
}

func TestRenderSectionSelection(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	doc := Build(testProject(), testRequirements(), "2025-06-01T00:00:00Z", []string{SectionFunctional})
	out, err := renderer.Render(doc, FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, out, "## Functional Requirements")
	assert.NotContains(t, out, "## Overview")
	assert.NotContains(t, out, "## User Stories")
	assert.NotContains(t, out, "## Summary")
}

func TestRenderJSON(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	doc := Build(testProject(), testRequirements(), "2025-06-01T00:00:00Z", nil)
	out, err := renderer.Render(doc, FormatJSON)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Webshop", decoded.Project.Name)
	assert.Equal(t, 3, decoded.TotalCount)
	require.Len(t, decoded.Functional, 1)
	assert.Equal(t, "Checkout", decoded.Functional[0].Title)
}

func TestRenderUnknownFormat(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	_, err = renderer.Render(Document{}, "yaml")
	assert.Error(t, err)
}

func TestRenderDefaultsToMarkdown(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	doc := Build(testProject(), nil, "2025-06-01T00:00:00Z", nil)
	out, err := renderer.Render(doc, "")
	require.NoError(t, err)
	assert.Contains(t, out, "# Webshop — Specification")
	assert.Contains(t, out, "This document covers 0 requirements.")
}
