// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the deepresearch pipeline:
// search results, source validations, acquired content, context chunks, and
// the aggregate run result returned by the orchestrator.
package types

import "time"

// SearchResult represents a candidate web source returned by a search
// provider. URL is the unique key within a run: the retrieval stage
// deduplicates merged provider output on the normalized URL, first
// occurrence wins.
type SearchResult struct {
	// URL is the canonical location of the source.
	URL string `json:"url" yaml:"url"`

	// Title is the page or article title as reported by the provider.
	Title string `json:"title" yaml:"title"`

	// Content is the provider-supplied body text, when available.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Snippet is a short provider-supplied excerpt.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Score is the provider-reported relevance, normalized to [0,1] by the
	// adapter. Zero when the provider does not score results.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`

	// PublishedDate is the publication date, when known.
	PublishedDate time.Time `json:"published_date,omitzero" yaml:"published_date,omitempty"`

	// Author is the byline, when known.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Provider identifies which search capability found this result.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// SourceValidation is the validator's verdict on a single source. It is
// recomputed per run and never persisted past the validating pass.
type SourceValidation struct {
	// URL is the source the verdict applies to.
	URL string `json:"url" yaml:"url"`

	// IsValid reports whether the source may continue to later stages.
	IsValid bool `json:"is_valid" yaml:"is_valid"`

	// CredibilityScore is a heuristic trust rating clamped to [0,100].
	CredibilityScore int `json:"credibility_score" yaml:"credibility_score"`

	// Reasons lists the checks that decided validity.
	Reasons []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`

	// Warnings lists non-fatal concerns (HTTPS missing, stale content, ...).
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AcquiredContent is the outcome of fetching one URL. A non-empty Error
// means the fetch failed and Text is empty; the run continues regardless.
type AcquiredContent struct {
	URL    string   `json:"url" yaml:"url"`
	Title  string   `json:"title,omitempty" yaml:"title,omitempty"`
	Text   string   `json:"text,omitempty" yaml:"text,omitempty"`
	Images []string `json:"images,omitempty" yaml:"images,omitempty"`
	Error  string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the content is usable.
func (c AcquiredContent) OK() bool {
	return c.Error == ""
}

// ContextChunk is a unit of cleaned, token-estimated source text eligible
// for inclusion in the synthesis prompt.
type ContextChunk struct {
	// Content is the cleaned (and possibly compressed) text.
	Content string `json:"content" yaml:"content"`

	// SourceURL is the URL the text was acquired from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Relevance is the chunk's score against the run's query terms.
	Relevance float64 `json:"relevance" yaml:"relevance"`

	// Tokens is the estimated token count of Content.
	Tokens int `json:"tokens" yaml:"tokens"`
}

// ResearchContext aggregates everything the synthesis stage needs. It is
// assembled once per run, after context building completes.
type ResearchContext struct {
	Query      string         `json:"query" yaml:"query"`
	ReportType ReportType     `json:"report_type" yaml:"report_type"`
	Findings   []string       `json:"findings" yaml:"findings"`
	Sources    []SearchResult `json:"sources" yaml:"sources"`
	Subtopics  []string       `json:"subtopics" yaml:"subtopics"`
}

// ReportType selects the synthesis template.
type ReportType string

const (
	ReportResearch     ReportType = "research"
	ReportDetailed     ReportType = "detailed"
	ReportQuickSummary ReportType = "quick-summary"
	ReportResource     ReportType = "resource"
	ReportOutline      ReportType = "outline"
)

// CostSummary is the run's aggregate LLM spend in USD.
type CostSummary struct {
	// Total is the sum of all per-model costs.
	Total float64 `json:"total" yaml:"total"`

	// Breakdown maps model name to accumulated cost.
	Breakdown map[string]float64 `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// RunMetadata records timing and volume counters for a completed run.
type RunMetadata struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	StartTime  time.Time `json:"start_time" yaml:"start_time"`
	EndTime    time.Time `json:"end_time" yaml:"end_time"`
	TokensUsed int       `json:"tokens_used" yaml:"tokens_used"`
	QueriesRun int       `json:"queries_run" yaml:"queries_run"`
}

// Duration returns the wall-clock length of the run.
func (m RunMetadata) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// RunResult is the public output of a full pipeline run.
type RunResult struct {
	Report    string         `json:"report" yaml:"report"`
	Sources   []SearchResult `json:"sources" yaml:"sources"`
	Subtopics []string       `json:"subtopics" yaml:"subtopics"`
	Context   []string       `json:"context" yaml:"context"`
	Costs     CostSummary    `json:"costs" yaml:"costs"`
	Metadata  RunMetadata    `json:"metadata" yaml:"metadata"`
}
