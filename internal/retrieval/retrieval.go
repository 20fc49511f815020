// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval fans sub-questions out to search providers with ordered
// fallback, then deduplicates and ranks the combined results. One failing
// sub-question never aborts the batch: its slot contributes zero results
// and the failure is reported in the output.
package retrieval

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/pdiddy/deepresearch/internal/retry"
	"github.com/pdiddy/deepresearch/internal/urlnorm"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

// Coordinator runs searches against an ordered provider list. The first
// provider is the default; the rest are fallbacks tried in order when a
// provider errors or returns nothing.
type Coordinator struct {
	providers []capability.SearchProvider
	cfg       types.RetrievalConfig
}

// New returns a Coordinator over the given providers. Provider order is
// fallback order.
func New(providers []capability.SearchProvider, cfg types.RetrievalConfig) *Coordinator {
	return &Coordinator{providers: providers, cfg: cfg}
}

// Output holds the merged results and per-sub-question diagnostics.
type Output struct {
	Results []types.SearchResult

	// DupsRemoved counts results dropped by URL deduplication.
	DupsRemoved int

	// Errors lists sub-questions whose every provider failed, as
	// human-readable messages. They are diagnostics, not failures.
	Errors []string
}

// Search fans the sub-questions out concurrently, tries providers in order
// per sub-question until one returns a non-empty result set, then merges,
// deduplicates (first-seen URL wins), and sorts by descending provider
// score. Progress and warnings are written to w.
func (c *Coordinator) Search(ctx context.Context, subQuestions []string, w io.Writer) (Output, error) {
	if len(c.providers) == 0 {
		return Output{}, fmt.Errorf("no search providers configured")
	}
	if len(subQuestions) == 0 {
		return Output{}, fmt.Errorf("no sub-questions to search")
	}

	// Settle-all: slot i holds sub-question i's outcome regardless of
	// completion order.
	perQuestion := make([][]types.SearchResult, len(subQuestions))
	perError := make([]error, len(subQuestions))

	var wg sync.WaitGroup
	for i, q := range subQuestions {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			perQuestion[i], perError[i] = c.searchOne(ctx, q)
		}(i, q)
	}
	wg.Wait()

	var all []types.SearchResult
	var out Output
	for i, results := range perQuestion {
		if perError[i] != nil {
			msg := fmt.Sprintf("%q: %v", subQuestions[i], perError[i])
			out.Errors = append(out.Errors, msg)
			fmt.Fprintf(w, "warning: search failed for %s\n", msg)
			continue
		}
		all = append(all, results...)
	}

	deduped, removed := Deduplicate(all)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Score > deduped[j].Score
	})

	out.Results = deduped
	out.DupsRemoved = removed
	return out, nil
}

// searchOne tries each provider in order for a single sub-question. A
// provider that errors or returns no results yields to the next; the
// returned error is non-nil only when every provider came up empty-handed
// with at least one failure.
func (c *Coordinator) searchOne(ctx context.Context, question string) ([]types.SearchResult, error) {
	opts := capability.SearchOptions{MaxResults: c.cfg.MaxResultsPerQuery, Recent: c.cfg.Recent}

	var lastErr error
	for _, p := range c.providers {
		var results []types.SearchResult
		err := retry.Do(ctx, c.cfg.MaxRetries, func(ctx context.Context) error {
			var err error
			results, err = p.Search(ctx, question, opts)
			return err
		})
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", p.Name(), err)
			continue
		}
		if len(results) == 0 {
			continue
		}
		for i := range results {
			if results[i].Provider == "" {
				results[i].Provider = p.Name()
			}
		}
		return results, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// Deduplicate drops results whose normalized URL was already seen, keeping
// the first occurrence. It returns the kept results in input order and the
// number removed.
func Deduplicate(results []types.SearchResult) ([]types.SearchResult, int) {
	seen := make(map[string]bool, len(results))
	deduped := make([]types.SearchResult, 0, len(results))
	removed := 0
	for _, r := range results {
		key := urlnorm.Normalize(r.URL)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}
	return deduped, removed
}
