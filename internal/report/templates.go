// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/deepresearch/pkg/types"
)

// Template pairs a system prompt with a user-prompt skeleton. The skeleton
// may reference {query}, {findings}, {subtopics}, {sources}, and {date}.
type Template struct {
	SystemPrompt string
	UserPrompt   string
}

// defaultTemplates keys the built-in templates by report type. Unknown
// types fall back to the research template.
var defaultTemplates = map[types.ReportType]Template{
	types.ReportResearch: {
		SystemPrompt: "You are a senior research analyst. Write a thorough, well-structured " +
			"markdown research report with clear sections and inline citations of the provided sources.",
		UserPrompt: `Write a research report answering: {query}

Research findings:
{findings}

Subtopics covered:
{subtopics}

Available sources:
{sources}

Report date: {date}. Cite sources inline where they support a claim.`,
	},
	types.ReportDetailed: {
		SystemPrompt: "You are a senior research analyst. Write an exhaustive, deeply detailed " +
			"markdown report. Cover every subtopic in its own section with analysis and citations.",
		UserPrompt: `Write a detailed report on: {query}

Findings:
{findings}

Subtopics, each requiring its own section:
{subtopics}

Sources:
{sources}

Report date: {date}.`,
	},
	types.ReportQuickSummary: {
		SystemPrompt: "You are a research assistant. Write a concise markdown summary: " +
			"a few paragraphs and a short bullet list of key points.",
		UserPrompt: `Summarize the research on: {query}

Findings:
{findings}

Date: {date}.`,
	},
	types.ReportResource: {
		SystemPrompt: "You are a research librarian. Produce an annotated markdown resource " +
			"list: for each source, its title, link, and a one-paragraph annotation of what it contributes.",
		UserPrompt: `Build a resource guide for: {query}

Sources to annotate:
{sources}

Supporting findings:
{findings}

Date: {date}.`,
	},
	types.ReportOutline: {
		SystemPrompt: "You are a research editor. Produce a markdown outline with nested " +
			"headings and one-line notes, suitable as a skeleton for a longer report.",
		UserPrompt: `Outline a full report on: {query}

Subtopics:
{subtopics}

Findings to allocate across sections:
{findings}

Date: {date}.`,
	},
}

// render fills a template's placeholders from the research context.
func render(tmpl Template, rctx types.ResearchContext, now time.Time) (system, user string) {
	findings := "No research findings were gathered; answer from general knowledge."
	if len(rctx.Findings) > 0 {
		findings = strings.Join(rctx.Findings, "\n\n---\n\n")
	}

	subtopics := "(none)"
	if len(rctx.Subtopics) > 0 {
		subtopics = "- " + strings.Join(rctx.Subtopics, "\n- ")
	}

	var sources strings.Builder
	for i, s := range rctx.Sources {
		fmt.Fprintf(&sources, "%d. %s (%s)\n", i+1, s.Title, s.URL)
	}
	sourceList := sources.String()
	if sourceList == "" {
		sourceList = "(none)"
	}

	r := strings.NewReplacer(
		"{query}", rctx.Query,
		"{findings}", findings,
		"{subtopics}", subtopics,
		"{sources}", sourceList,
		"{date}", now.Format("January 2, 2006"),
	)
	return tmpl.SystemPrompt, r.Replace(tmpl.UserPrompt)
}
