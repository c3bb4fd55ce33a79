// Package discovery implements the guided requirement discovery flow:
// a fixed sequence of interview stages with question banks, and the
// keyword heuristics that turn free-text answers into draft
// requirements. Pure functions with no storage dependency.
package discovery

import (
	"regexp"
	"strings"

	"github.com/reqwire/reqwire/internal/storage"
)

// Stage identifies one step of the discovery interview.
type Stage string

const (
	StageInitial      Stage = "initial"
	StageStakeholders Stage = "stakeholders"
	StageFeatures     Stage = "features"
	StageConstraints  Stage = "constraints"
	StageQuality      Stage = "quality"
	StageFinalize     Stage = "finalize"

	// StageComplete is the terminal marker returned by NextStage after
	// finalize; it is not an interview stage itself.
	StageComplete Stage = "complete"
)

// StageOrder is the fixed interview sequence.
var StageOrder = []Stage{
	StageInitial, StageStakeholders, StageFeatures,
	StageConstraints, StageQuality, StageFinalize,
}

// StageGuide holds the title, framing, and question bank for one stage.
type StageGuide struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
}

var stageGuides = map[Stage]StageGuide{
	StageInitial: {
		Title:       "Project Context",
		Description: "Let's start by understanding the basic context of your project.",
		Questions: []string{
			"What problem is this project trying to solve?",
			"Who are the primary users or customers?",
			"What are the main goals or objectives of this project?",
			"Are there any existing systems this will replace or integrate with?",
		},
	},
	StageStakeholders: {
		Title:       "Stakeholder Needs",
		Description: "Let's identify the key stakeholders and their needs.",
		Questions: []string{
			"Who are all the stakeholders involved in this project?",
			"What are their primary concerns or interests?",
			"Are there conflicting needs between different stakeholders?",
			"Who will be using the system most frequently?",
		},
	},
	StageFeatures: {
		Title:       "Core Functionality",
		Description: "Now, let's explore the main features and functionality needed.",
		Questions: []string{
			"What are the most critical features this solution must have?",
			"What actions should users be able to perform?",
			"What data needs to be stored or processed?",
			"Are there any specific workflows that need to be supported?",
		},
	},
	StageConstraints: {
		Title:       "Constraints and Limitations",
		Description: "Let's identify any constraints or limitations for the project.",
		Questions: []string{
			"Are there any technical constraints or limitations?",
			"What are the budget or resource constraints?",
			"Are there any regulatory or compliance requirements?",
			"What is the timeline for implementation?",
		},
	},
	StageQuality: {
		Title:       "Quality Attributes",
		Description: "Let's discuss the non-functional requirements and quality attributes.",
		Questions: []string{
			"What performance requirements are important (speed, throughput, etc.)?",
			"What security and privacy requirements are needed?",
			"How important is scalability for future growth?",
			"What level of reliability and availability is required?",
		},
	},
	StageFinalize: {
		Title:       "Requirement Finalization",
		Description: "Let's review and finalize the requirements based on all the information provided.",
		Questions: []string{
			"Based on our discussion, I can now suggest specific requirements. Would you like to review them?",
			"Are there any areas we've discussed that need more clarification?",
			"Should we prioritize these requirements in a specific way?",
			"Are there any assumptions we should document alongside these requirements?",
		},
	},
}

// Guide returns the interview guide for a stage. Unknown stages get
// the initial guide so a caller with a stale stage name can restart.
func Guide(stage Stage) StageGuide {
	if g, ok := stageGuides[stage]; ok {
		return g
	}
	return stageGuides[StageInitial]
}

// Valid reports whether s names an interview stage.
func (s Stage) Valid() bool {
	_, ok := stageGuides[s]
	return ok
}

// NextStage returns the stage following current, or StageComplete once
// the sequence is exhausted.
func NextStage(current Stage) Stage {
	for i, s := range StageOrder {
		if s == current && i < len(StageOrder)-1 {
			return StageOrder[i+1]
		}
	}
	return StageComplete
}

// Draft is a requirement extracted from discovery responses, before it
// is persisted.
type Draft struct {
	Title       string
	Description string
	Type        storage.RequirementType
	Priority    storage.RequirementPriority
	Tags        []string
}

var (
	performanceRe = regexp.MustCompile(`(?i)performance|speed|fast|responsive`)
	securityRe    = regexp.MustCompile(`(?i)security|secure|protect|privacy`)
	scalabilityRe = regexp.MustCompile(`(?i)scalability|scale|growth`)
	technicalRe   = regexp.MustCompile(`(?i)technical|technology|platform|architecture`)
	complianceRe  = regexp.MustCompile(`(?i)regulat|compliance|legal|gdpr|hipaa`)

	userStoryRe        = regexp.MustCompile(`(?i)\bas an?\b.*\bI (want|need|would like)\b`)
	criticalPriorityRe = regexp.MustCompile(`(?i)critical|must have|essential|security`)
	highPriorityRe     = regexp.MustCompile(`(?i)important|should have|high`)
	lowPriorityRe      = regexp.MustCompile(`(?i)nice to have|could have|optional|low`)
	fragmentSplitRe    = regexp.MustCompile(`[.,;]`)
)

// ExtractRequirements mines the collected stage responses for draft
// requirements: feature sentences become functional requirements, and
// quality/constraint answers are scanned for well-known non-functional
// and technical concerns.
func ExtractRequirements(responses map[Stage]string) []Draft {
	var drafts []Draft

	if features := responses[StageFeatures]; features != "" {
		for _, fragment := range splitFragments(features) {
			if len(fragment) <= 10 {
				continue
			}
			drafts = append(drafts, Draft{
				Title:       "Feature: " + truncate(fragment, 50),
				Description: "The system shall provide: " + fragment,
				Type:        storage.TypeFunctional,
				Priority:    storage.PriorityMedium,
				Tags:        ExtractTags(fragment),
			})
		}
	}

	if quality := responses[StageQuality]; quality != "" {
		if performanceRe.MatchString(quality) {
			drafts = append(drafts, Draft{
				Title:       "Performance Requirements",
				Description: "The system must meet performance criteria as described: " + matchingSentences(quality, performanceRe),
				Type:        storage.TypeNonFunctional,
				Priority:    storage.PriorityHigh,
				Tags:        []string{"performance"},
			})
		}
		if securityRe.MatchString(quality) {
			drafts = append(drafts, Draft{
				Title:       "Security Requirements",
				Description: "The system must meet security requirements as described: " + matchingSentences(quality, securityRe),
				Type:        storage.TypeNonFunctional,
				Priority:    storage.PriorityCritical,
				Tags:        []string{"security"},
			})
		}
		if scalabilityRe.MatchString(quality) {
			drafts = append(drafts, Draft{
				Title:       "Scalability Requirements",
				Description: "The system must meet scalability requirements as described: " + matchingSentences(quality, scalabilityRe),
				Type:        storage.TypeNonFunctional,
				Priority:    storage.PriorityMedium,
				Tags:        []string{"scalability"},
			})
		}
	}

	if constraints := responses[StageConstraints]; constraints != "" {
		if technicalRe.MatchString(constraints) {
			drafts = append(drafts, Draft{
				Title:       "Technical Constraints",
				Description: "The system must adhere to the following technical constraints: " + matchingSentences(constraints, technicalRe),
				Type:        storage.TypeTechnical,
				Priority:    storage.PriorityHigh,
				Tags:        []string{"technical", "constraint"},
			})
		}
		if complianceRe.MatchString(constraints) {
			drafts = append(drafts, Draft{
				Title:       "Compliance Requirements",
				Description: "The system must satisfy the following compliance constraints: " + matchingSentences(constraints, complianceRe),
				Type:        storage.TypeNonFunctional,
				Priority:    storage.PriorityCritical,
				Tags:        []string{"compliance"},
			})
		}
	}

	return drafts
}

// SuggestType guesses a requirement type from a free-text description.
func SuggestType(text string) storage.RequirementType {
	switch {
	case userStoryRe.MatchString(text):
		return storage.TypeUserStory
	case performanceRe.MatchString(text) || securityRe.MatchString(text) || scalabilityRe.MatchString(text):
		return storage.TypeNonFunctional
	case technicalRe.MatchString(text):
		return storage.TypeTechnical
	default:
		return storage.TypeFunctional
	}
}

// SuggestPriority guesses a priority from a free-text description.
func SuggestPriority(text string) storage.RequirementPriority {
	switch {
	case criticalPriorityRe.MatchString(text):
		return storage.PriorityCritical
	case highPriorityRe.MatchString(text):
		return storage.PriorityHigh
	case lowPriorityRe.MatchString(text):
		return storage.PriorityLow
	default:
		return storage.PriorityMedium
	}
}

// tagKeywords maps well-known domain words to the tag they produce.
var tagKeywords = []string{
	"ui", "api", "database", "auth", "search", "report", "export",
	"import", "mobile", "performance", "security", "admin",
	"notification", "payment", "integration",
}

var tagKeywordRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(tagKeywords))
	for _, kw := range tagKeywords {
		res[kw] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return res
}()

// ExtractTags pulls well-known keywords out of a text fragment.
func ExtractTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, kw := range tagKeywords {
		if tagKeywordRes[kw].MatchString(lower) {
			tags = append(tags, kw)
		}
	}
	return tags
}

// splitFragments breaks free text on sentence punctuation, trimming
// whitespace and dropping empties.
func splitFragments(text string) []string {
	parts := fragmentSplitRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// matchingSentences joins the fragments of text that match re.
func matchingSentences(text string, re *regexp.Regexp) string {
	var hits []string
	for _, fragment := range splitFragments(text) {
		if re.MatchString(fragment) {
			hits = append(hits, fragment)
		}
	}
	if len(hits) == 0 {
		return text
	}
	return strings.Join(hits, ". ")
}

// truncate shortens s to at most n bytes without splitting the final
// word awkwardly mid-rune (inputs here are ASCII interview text).
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
