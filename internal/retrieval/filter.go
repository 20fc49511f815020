// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/deepresearch/internal/relevance"
	"github.com/pdiddy/deepresearch/internal/urlnorm"
	"github.com/pdiddy/deepresearch/pkg/types"
)

// FilterOptions narrows a result set after the fact. Zero values disable
// the corresponding check.
type FilterOptions struct {
	// MinContentLength drops results with shorter Content.
	MinContentLength int

	// AllowedDomains, when non-empty, keeps only matching domains
	// (substring match).
	AllowedDomains []string

	// BlockedDomains drops matching domains (substring match).
	BlockedDomains []string

	// MaxAge drops results older than this. Undated results are kept.
	MaxAge time.Duration
}

// Filter returns the results that pass every configured check, preserving
// order. It is usable independently of Search.
func Filter(results []types.SearchResult, opts FilterOptions) []types.SearchResult {
	kept := make([]types.SearchResult, 0, len(results))
	now := time.Now()
	for _, r := range results {
		if opts.MinContentLength > 0 && len(r.Content) < opts.MinContentLength {
			continue
		}
		domain := urlnorm.Domain(r.URL)
		if len(opts.AllowedDomains) > 0 && !matchesAny(domain, opts.AllowedDomains) {
			continue
		}
		if matchesAny(domain, opts.BlockedDomains) {
			continue
		}
		if opts.MaxAge > 0 && !r.PublishedDate.IsZero() && now.Sub(r.PublishedDate) > opts.MaxAge {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func matchesAny(domain string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(domain, p) {
			return true
		}
	}
	return false
}

// Rank reorders results by query-term match boosts: +2 per query term found
// in the title, +1 per term found in the content or snippet, +2 for results
// published within 7 days, +1 within 30 days. The sort is stable so equal
// boosts keep their input order. It is usable independently of Search.
func Rank(results []types.SearchResult, query string) []types.SearchResult {
	terms := relevance.Terms(query)
	now := time.Now()

	boosts := make([]int, len(results))
	for i, r := range results {
		boosts[i] = rankBoost(r, terms, now)
	}

	ranked := make([]types.SearchResult, len(results))
	copy(ranked, results)
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return boosts[order[a]] > boosts[order[b]]
	})
	for i, idx := range order {
		ranked[i] = results[idx]
	}
	return ranked
}

func rankBoost(r types.SearchResult, terms []string, now time.Time) int {
	title := strings.ToLower(r.Title)
	body := strings.ToLower(r.Content + " " + r.Snippet)

	boost := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			boost += 2
		}
		if strings.Contains(body, term) {
			boost++
		}
	}
	if !r.PublishedDate.IsZero() {
		age := now.Sub(r.PublishedDate)
		switch {
		case age < 7*24*time.Hour:
			boost += 2
		case age < 30*24*time.Hour:
			boost++
		}
	}
	return boost
}
