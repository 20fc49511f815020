// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package capability defines the external provider contracts the pipeline
// core depends on: web search, content fetching, and LLM completion. Each
// contract is independently substitutable; concrete adapters live under
// internal/providers and in downstream integrations. Per the Strategy
// pattern, implementations are injected at orchestrator construction time.
package capability

import (
	"context"

	"github.com/pdiddy/deepresearch/pkg/types"
)

// SearchOptions bounds a single provider query.
type SearchOptions struct {
	// MaxResults caps the result count. Zero means provider default.
	MaxResults int

	// Recent restricts results to recent content when the provider supports it.
	Recent bool
}

// SearchProvider searches the web for a single query string. Providers must
// classify failures via ProviderError so the retrieval coordinator can
// distinguish invalid credentials (never retried) from rate limits and
// transient faults (retried with backoff).
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, opts SearchOptions) ([]types.SearchResult, error)
}

// Fetcher acquires readable content from a URL. Ordinary fetch failures
// (timeouts, non-2xx, parse errors) are reported in AcquiredContent.Error,
// not as a returned error; the error return is reserved for context
// cancellation and programming mistakes.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, url string) (types.AcquiredContent, error)
}

// ResourceReleaser is implemented by fetchers that hold external resources
// (e.g. a headless browser session). The coordinator releases every fetcher
// that implements it when the run ends, on success and failure alike.
type ResourceReleaser interface {
	Release(ctx context.Context) error
}

// Message is one turn of an LLM conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest parameterizes one LLM call.
type CompletionRequest struct {
	Messages    []Message
	Model       string
	Temperature float64
	MaxTokens   int
}

// Usage reports token consumption for one LLM call, used for cost accounting.
type Usage struct {
	Model        string
	InputTokens  int
	OutputTokens int
}

// Total returns the combined token count.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Completion is the outcome of a batch LLM call.
type Completion struct {
	Text  string
	Usage Usage
}

// StreamChunk is one fragment of a streaming LLM response. The final chunk
// has Done set and carries the call's Usage; its Text may be empty. A
// stream that fails after delivery begins sets Err on the final chunk so
// consumers can tell a truncated response from a complete one.
type StreamChunk struct {
	Text  string
	Done  bool
	Usage Usage
	Err   error
}

// LLM is the language-model capability. Stream yields incremental fragments
// and closes the channel after the final (Done) chunk. Embed is part of the
// minimal provider contract though the core pipeline does not call it.
type LLM interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
