// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deepresearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call an LLM capability.
type AIConfig struct {
	// Model is the model identifier passed to the LLM capability.
	Model string `json:"model" yaml:"model"`

	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the completion length. Zero means provider default.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// RetrievalConfig holds settings for the retrieval stage.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResultsPerQuery is the per-sub-question result cap passed to providers.
	MaxResultsPerQuery int `json:"max_results_per_query" yaml:"max_results_per_query"`

	// Recent restricts providers to recently published content.
	Recent bool `json:"recent" yaml:"recent"`

	// MaxRetries is the retry budget for transient provider failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ValidationConfig holds the criteria applied by the source validator.
// The zero value applies no criteria beyond the built-in heuristics.
type ValidationConfig struct {
	// MinCredibility fails sources scoring below it. Zero disables the check.
	MinCredibility int `json:"min_credibility" yaml:"min_credibility"`

	// RequireHTTPS penalizes plain-HTTP sources when set.
	RequireHTTPS bool `json:"require_https" yaml:"require_https"`

	// MaxAgeDays penalizes content older than this many days. Zero disables.
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days"`

	// RequireDate penalizes sources with no publish date when set.
	RequireDate bool `json:"require_date" yaml:"require_date"`

	// MinContentLength penalizes sources with shorter content. Zero disables.
	MinContentLength int `json:"min_content_length" yaml:"min_content_length"`

	// AllowedDomains, when non-empty, fails any source whose domain matches
	// none of the entries (substring match).
	AllowedDomains []string `json:"allowed_domains,omitempty" yaml:"allowed_domains,omitempty"`

	// BlockedDomains fails any source whose domain matches an entry.
	BlockedDomains []string `json:"blocked_domains,omitempty" yaml:"blocked_domains,omitempty"`
}

// AcquisitionConfig holds settings for the content acquisition stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Concurrency is the number of URLs fetched in parallel per batch (default 3).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// FetchTimeout bounds each individual fetch. Zero means no per-item bound
	// beyond the HTTP timeout.
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`

	// MaxRetries is the retry budget for transient fetch failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ContextConfig holds settings for the context building stage.
type ContextConfig struct {
	AIConfig `yaml:",inline"`

	// TokenBudget bounds the total estimated tokens of the selected context
	// (default 8000).
	TokenBudget int `json:"token_budget" yaml:"token_budget"`

	// Compress enables LLM compression of large chunks.
	Compress bool `json:"compress" yaml:"compress"`

	// CompressionRatio is the target size ratio for compressed chunks (default 0.3).
	CompressionRatio float64 `json:"compression_ratio" yaml:"compression_ratio"`
}

// SynthesisConfig holds settings for the report synthesis stage.
type SynthesisConfig struct {
	AIConfig `yaml:",inline"`

	// ReportType selects the template (default "research").
	ReportType ReportType `json:"report_type" yaml:"report_type"`

	// Tone selects an optional stylistic modifier keyword.
	Tone string `json:"tone,omitempty" yaml:"tone,omitempty"`
}

// PipelineConfig groups all stage configurations for one orchestrator run.
// It is built once at startup and never mutated afterward.
type PipelineConfig struct {
	Retrieval   RetrievalConfig   `json:"retrieval" yaml:"retrieval"`
	Validation  ValidationConfig  `json:"validation" yaml:"validation"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	Context     ContextConfig     `json:"context" yaml:"context"`
	Synthesis   SynthesisConfig   `json:"synthesis" yaml:"synthesis"`

	// Planner configures sub-question generation.
	Planner AIConfig `json:"planner" yaml:"planner"`

	// MaxSources caps how many validated sources reach acquisition (default 10).
	MaxSources int `json:"max_sources" yaml:"max_sources"`
}
