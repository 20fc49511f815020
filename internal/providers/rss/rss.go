// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rss provides a feed-backed search provider. Feeds are not
// queryable like a search API, so each configured feed is pulled and its
// entries are matched against the query locally.
package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/deepresearch/internal/httputil"
	"github.com/pdiddy/deepresearch/internal/relevance"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 20
	snippetLength     = 200
)

// Provider searches a fixed set of RSS/Atom feeds.
type Provider struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []string
	cfg    types.HTTPConfig
}

// New returns a Provider over the given feed URLs.
func New(feeds []string, cfg types.HTTPConfig) *Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Provider{
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
		feeds:  feeds,
		cfg:    cfg,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "rss" }

// Search pulls every configured feed and returns entries that overlap the
// query terms, most relevant first. Individual feed failures are tolerated
// as long as at least one feed can be read; when every feed fails the
// whole call fails.
func (p *Provider) Search(ctx context.Context, query string, opts capability.SearchOptions) ([]types.SearchResult, error) {
	terms := relevance.Terms(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("query %q has no searchable terms", query)
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	var results []types.SearchResult
	var failures int
	var lastErr error
	for _, feedURL := range p.feeds {
		items, err := p.readFeed(ctx, feedURL)
		if err != nil {
			failures++
			lastErr = err
			continue
		}
		results = append(results, p.match(items, terms, opts.Recent)...)
	}
	if failures == len(p.feeds) && lastErr != nil {
		// Keep an existing classification (auth, rate limit) intact.
		var pe *capability.ProviderError
		if errors.As(lastErr, &pe) {
			return nil, lastErr
		}
		return nil, capability.NewProviderError(p.Name(), lastErr)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func (p *Provider) readFeed(ctx context.Context, feedURL string) ([]*gofeed.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", feedURL, err)
	}
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, capability.NewAuthError(p.Name(), fmt.Errorf("feed %s returned HTTP %d", feedURL, resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, capability.NewRateLimitError(p.Name(), fmt.Errorf("feed %s returned HTTP %d", feedURL, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("feed %s returned HTTP %d", feedURL, resp.StatusCode)
	}

	feed, err := p.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}
	return feed.Items, nil
}

// match keeps feed items whose title or description overlaps the query
// terms, scored by term density.
func (p *Provider) match(items []*gofeed.Item, terms []string, recentOnly bool) []types.SearchResult {
	var out []types.SearchResult
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		desc := strings.TrimSpace(it.Description)

		score := relevance.Score(title+" "+desc, terms)
		if score == 0 {
			continue
		}

		var published time.Time
		if it.PublishedParsed != nil {
			published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			published = *it.UpdatedParsed
		}
		if recentOnly && (published.IsZero() || time.Since(published) > 30*24*time.Hour) {
			continue
		}

		var author string
		if len(it.Authors) > 0 && it.Authors[0] != nil {
			author = it.Authors[0].Name
		}

		content := it.Content
		if content == "" {
			content = desc
		}
		out = append(out, types.SearchResult{
			URL:           strings.TrimSpace(it.Link),
			Title:         title,
			Content:       content,
			Snippet:       snippet(desc),
			Score:         score,
			PublishedDate: published,
			Author:        author,
		})
	}
	return out
}

func snippet(text string) string {
	if len(text) <= snippetLength {
		return text
	}
	return text[:snippetLength] + "..."
}
