// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contextbuild turns acquired page content into relevance-ranked,
// token-budgeted context chunks for the synthesis prompt. Selection is a
// greedy pass with a bounded local-improvement swap; oversized chunks may
// be compressed through the LLM capability.
package contextbuild

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/deepresearch/internal/relevance"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

const (
	defaultTokenBudget = 8000

	// minCompressTokens is the size below which chunks are kept verbatim.
	minCompressTokens = 500

	defaultCompressionRatio = 0.3
)

// Source is one unit of input text with its origin.
type Source struct {
	URL     string
	Content string
}

// Builder assembles the context set for one run.
type Builder struct {
	llm capability.LLM
	cfg types.ContextConfig
}

// New returns a Builder. llm may be nil when cfg.Compress is false.
func New(llm capability.LLM, cfg types.ContextConfig) *Builder {
	return &Builder{llm: llm, cfg: cfg}
}

// Build cleans, scores, and selects chunks from the sources against the
// query, within the configured token budget. It returns the selected
// chunks in relevance order plus the LLM usage incurred by compression.
func (b *Builder) Build(ctx context.Context, sources []Source, query string, w io.Writer) ([]types.ContextChunk, []capability.Usage) {
	terms := relevance.Terms(query)

	chunks := make([]types.ContextChunk, 0, len(sources))
	for _, s := range sources {
		text := Clean(s.Content)
		if text == "" {
			continue
		}
		chunks = append(chunks, types.ContextChunk{
			Content:   text,
			SourceURL: s.URL,
			Relevance: relevance.Score(text, terms),
			Tokens:    EstimateTokens(text),
		})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Relevance > chunks[j].Relevance
	})

	return b.selectWithinBudget(ctx, chunks, w)
}

// Strings returns just the chunk texts, in order.
func Strings(chunks []types.ContextChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

// selectWithinBudget greedily admits chunks in relevance order while the
// cumulative token estimate stays within budget. A chunk that does not fit
// is first offered to the compressor (when enabled and large enough),
// otherwise it may replace the least-relevant selected chunk if that both
// improves relevance and keeps the total within budget. The swap is a
// local heuristic, deliberately not a full repacking.
func (b *Builder) selectWithinBudget(ctx context.Context, chunks []types.ContextChunk, w io.Writer) ([]types.ContextChunk, []capability.Usage) {
	budget := b.cfg.TokenBudget
	if budget <= 0 {
		budget = defaultTokenBudget
	}

	var selected []types.ContextChunk
	var usages []capability.Usage
	used := 0

	for _, chunk := range chunks {
		if used+chunk.Tokens <= budget {
			selected = append(selected, chunk)
			used += chunk.Tokens
			continue
		}

		remaining := budget - used
		if b.cfg.Compress && b.llm != nil && chunk.Tokens > minCompressTokens && remaining > 0 {
			compressed, usage, err := b.compress(ctx, chunk, remaining)
			if usage.Total() > 0 {
				usages = append(usages, usage)
			}
			if err != nil {
				// Compression failures fall back to the original chunk.
				fmt.Fprintf(w, "warning: compressing chunk from %s: %v\n", chunk.SourceURL, err)
				selected = append(selected, chunk)
				used += chunk.Tokens
				continue
			}
			selected = append(selected, compressed)
			used += compressed.Tokens
			continue
		}

		if i, ok := swapCandidate(selected, chunk, used, budget); ok {
			used += chunk.Tokens - selected[i].Tokens
			selected[i] = chunk
		}
	}

	return selected, usages
}

// swapCandidate finds the least-relevant selected chunk that the candidate
// may replace: the candidate must beat that chunk's relevance and the swap
// must keep the cumulative tokens within budget.
func swapCandidate(selected []types.ContextChunk, candidate types.ContextChunk, used, budget int) (int, bool) {
	least := -1
	for i := range selected {
		if least < 0 || selected[i].Relevance < selected[least].Relevance {
			least = i
		}
	}
	if least < 0 {
		return 0, false
	}
	if candidate.Relevance <= selected[least].Relevance {
		return 0, false
	}
	if used-selected[least].Tokens+candidate.Tokens > budget {
		return 0, false
	}
	return least, true
}

const compressPrompt = `Compress the following text to roughly %d tokens while preserving every
key fact, figure, and claim. Respond with the compressed text only.

%s`

// compress asks the LLM to shrink a chunk. The target is the configured
// ratio of the original, capped at the remaining budget.
func (b *Builder) compress(ctx context.Context, chunk types.ContextChunk, remaining int) (types.ContextChunk, capability.Usage, error) {
	ratio := b.cfg.CompressionRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = defaultCompressionRatio
	}
	target := int(float64(chunk.Tokens) * ratio)
	if target > remaining {
		target = remaining
	}
	if target < 1 {
		target = 1
	}

	completion, err := b.llm.Complete(ctx, capability.CompletionRequest{
		Messages: []capability.Message{
			{Role: "user", Content: fmt.Sprintf(compressPrompt, target, chunk.Content)},
		},
		Model:       b.cfg.Model,
		Temperature: b.cfg.Temperature,
		MaxTokens:   b.cfg.MaxTokens,
	})
	if err != nil {
		return types.ContextChunk{}, capability.Usage{}, err
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return types.ContextChunk{}, completion.Usage, fmt.Errorf("empty compression result")
	}
	return types.ContextChunk{
		Content:   text,
		SourceURL: chunk.SourceURL,
		Relevance: chunk.Relevance,
		Tokens:    EstimateTokens(text),
	}, completion.Usage, nil
}
