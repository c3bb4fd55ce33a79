// Package specdoc renders a project and its requirements into a
// specification document. Markdown output goes through text/template;
// JSON output is the same section data marshaled directly.
package specdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/reqwire/reqwire/internal/storage"
)

// Format selects the output representation.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Section names that can be included in a document.
const (
	SectionOverview      = "overview"
	SectionFunctional    = "functional"
	SectionNonFunctional = "non-functional"
	SectionTechnical     = "technical"
	SectionUserStories   = "user-stories"
	SectionSummary       = "summary"
)

// AllSections is the default section set, in render order.
var AllSections = []string{
	SectionOverview, SectionFunctional, SectionNonFunctional,
	SectionTechnical, SectionUserStories, SectionSummary,
}

// Document is the assembled specification before formatting.
type Document struct {
	Project      storage.Project       `json:"project"`
	GeneratedAt  string                `json:"generatedAt"`
	Sections     []string              `json:"sections"`
	Functional   []storage.Requirement `json:"functional,omitempty"`
	NonFunc      []storage.Requirement `json:"nonFunctional,omitempty"`
	Technical    []storage.Requirement `json:"technical,omitempty"`
	UserStories  []storage.Requirement `json:"userStories,omitempty"`
	TotalCount   int                   `json:"totalCount"`
	ByStatus     map[string]int        `json:"byStatus,omitempty"`
	ByPriority   map[string]int        `json:"byPriority,omitempty"`
}

const markdownTemplate = `# {{.Project.Name}} — Specification

_Generated {{.GeneratedAt}}_

{{if .Has "overview"}}## Overview

{{if .Project.Description}}{{.Project.Description}}{{else}}_No project description recorded._{{end}}

This document covers {{.TotalCount}} requirement{{if ne .TotalCount 1}}s{{end}}.
{{end}}{{if and (.Has "functional") .Functional}}## Functional Requirements

{{range .Functional}}{{template "requirement" .}}{{end}}{{end}}{{if and (.Has "non-functional") .NonFunc}}## Non-Functional Requirements

{{range .NonFunc}}{{template "requirement" .}}{{end}}{{end}}{{if and (.Has "technical") .Technical}}## Technical Requirements

{{range .Technical}}{{template "requirement" .}}{{end}}{{end}}{{if and (.Has "user-stories") .UserStories}}## User Stories

{{range .UserStories}}{{template "requirement" .}}{{end}}{{end}}{{if .Has "summary"}}## Summary

| Priority | Count |
|----------|-------|
{{range $p, $n := .ByPriority}}| {{$p}} | {{$n}} |
{{end}}
| Status | Count |
|--------|-------|
{{range $s, $n := .ByStatus}}| {{$s}} | {{$n}} |
{{end}}{{end}}`

const requirementTemplate = `### {{.Title}}

- **Priority:** {{.Priority}}
- **Status:** {{.Status}}
{{if .Tags}}- **Tags:** {{join .Tags ", "}}
{{end}}
{{.Description}}

`

// Renderer formats specification documents.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the markdown templates.
func NewRenderer() (*Renderer, error) {
	tmpl := template.New("spec").Funcs(template.FuncMap{
		"join": strings.Join,
	})
	tmpl, err := tmpl.Parse(markdownTemplate)
	if err != nil {
		return nil, fmt.Errorf("specdoc: parse template: %w", err)
	}
	if _, err := tmpl.New("requirement").Parse(requirementTemplate); err != nil {
		return nil, fmt.Errorf("specdoc: parse requirement template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Build assembles a Document from a project and its requirements.
// sections defaults to AllSections when empty; unknown section names
// are ignored.
func Build(project storage.Project, reqs []storage.Requirement, generatedAt string, sections []string) Document {
	if len(sections) == 0 {
		sections = AllSections
	}

	doc := Document{
		Project:     project,
		GeneratedAt: generatedAt,
		Sections:    sections,
		TotalCount:  len(reqs),
		ByStatus:    map[string]int{},
		ByPriority:  map[string]int{},
	}
	for _, r := range reqs {
		doc.ByStatus[string(r.Status)]++
		doc.ByPriority[string(r.Priority)]++
		switch r.Type {
		case storage.TypeFunctional:
			doc.Functional = append(doc.Functional, r)
		case storage.TypeNonFunctional:
			doc.NonFunc = append(doc.NonFunc, r)
		case storage.TypeTechnical:
			doc.Technical = append(doc.Technical, r)
		case storage.TypeUserStory:
			doc.UserStories = append(doc.UserStories, r)
		}
	}
	return doc
}

// Has reports whether the document includes a section. Used from the
// markdown template.
func (d Document) Has(section string) bool {
	for _, s := range d.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// Render formats the document. Markdown goes through the template;
// JSON marshals the document itself.
func (r *Renderer) Render(doc Document, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("specdoc: marshal: %w", err)
		}
		return string(data), nil
	case FormatMarkdown, "":
		var buf bytes.Buffer
		if err := r.tmpl.Execute(&buf, doc); err != nil {
			return "", fmt.Errorf("specdoc: render: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("specdoc: unknown format %q", format)
	}
}
