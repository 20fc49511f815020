// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire fetches readable content for batches of URLs with
// per-URL caching, bounded concurrency, and error isolation. A failing
// page yields an error-tagged result for that URL; siblings are unaffected.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/deepresearch/internal/retry"
	"github.com/pdiddy/deepresearch/internal/urlnorm"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

const defaultConcurrency = 3

// Cache stores acquired content keyed by normalized URL. The working
// memory store implements it so the cache doubles as the run's visited
// set. Implementations must be safe for concurrent use.
type Cache interface {
	GetContent(url string) (types.AcquiredContent, bool)
	PutContent(url string, content types.AcquiredContent)
}

// mapCache is the fallback Cache when the caller supplies none.
type mapCache struct {
	mu sync.Mutex
	m  map[string]types.AcquiredContent
}

func (c *mapCache) GetContent(url string) (types.AcquiredContent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[url]
	return v, ok
}

func (c *mapCache) PutContent(url string, content types.AcquiredContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[url] = content
}

// Selector chooses the fetcher for a URL. The default routes JS-heavy
// domains to a rendering-capable fetcher and everything else to a static
// one; callers may override per Acquire call.
type Selector func(url string) capability.Fetcher

// Options adjusts a single Acquire call.
type Options struct {
	// Selector overrides the coordinator's fetcher selection.
	Selector Selector
}

// Coordinator owns content acquisition for one run, including the
// fetchers' external resources, which Release frees when the run ends.
type Coordinator struct {
	fetchers []capability.Fetcher
	selector Selector
	cache    Cache
	cfg      types.AcquisitionConfig
}

// New returns a Coordinator over the given fetchers. The selector decides
// per URL which fetcher handles it; when nil, every URL goes to the first
// fetcher. A nil cache gets a private in-memory one.
func New(fetchers []capability.Fetcher, selector Selector, cache Cache, cfg types.AcquisitionConfig) (*Coordinator, error) {
	if len(fetchers) == 0 {
		return nil, fmt.Errorf("no fetchers configured")
	}
	if selector == nil {
		first := fetchers[0]
		selector = func(string) capability.Fetcher { return first }
	}
	if cache == nil {
		cache = &mapCache{m: make(map[string]types.AcquiredContent)}
	}
	return &Coordinator{
		fetchers: fetchers,
		selector: selector,
		cache:    cache,
		cfg:      cfg,
	}, nil
}

// DomainSelector routes URLs whose domain matches an entry in jsDomains
// (substring match) to the rendering fetcher, all others to the static one.
func DomainSelector(static, rendering capability.Fetcher, jsDomains []string) Selector {
	return func(url string) capability.Fetcher {
		domain := urlnorm.Domain(url)
		for _, d := range jsDomains {
			if d != "" && domainMatches(domain, d) {
				return rendering
			}
		}
		return static
	}
}

func domainMatches(domain, pattern string) bool {
	if domain == pattern {
		return true
	}
	return len(domain) > len(pattern) && domain[len(domain)-len(pattern)-1] == '.' &&
		domain[len(domain)-len(pattern):] == pattern
}

// Acquire fetches the given URLs. Input is normalized and deduplicated;
// cached URLs are served without a capability call. The remainder is
// processed in sequential batches of cfg.Concurrency, concurrently within
// each batch. Output order follows (deduplicated) input order, one item
// per distinct URL, failures included as error-tagged results.
func (c *Coordinator) Acquire(ctx context.Context, urls []string, opts Options, w io.Writer) []types.AcquiredContent {
	concurrency := c.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return c.acquireWithConcurrency(ctx, urls, concurrency, opts, w)
}

// AcquirePriority fetches the priority URLs strictly sequentially before
// the remainder, guaranteeing they complete first under contention. The
// output lists priority results first, then the rest, deduplicated across
// both groups.
func (c *Coordinator) AcquirePriority(ctx context.Context, priority, rest []string, opts Options, w io.Writer) []types.AcquiredContent {
	first := c.acquireWithConcurrency(ctx, priority, 1, opts, w)

	seen := make(map[string]bool, len(first))
	for _, r := range first {
		seen[urlnorm.Normalize(r.URL)] = true
	}
	var remainder []string
	for _, u := range rest {
		if !seen[urlnorm.Normalize(u)] {
			remainder = append(remainder, u)
		}
	}
	return append(first, c.Acquire(ctx, remainder, opts, w)...)
}

func (c *Coordinator) acquireWithConcurrency(ctx context.Context, urls []string, concurrency int, opts Options, w io.Writer) []types.AcquiredContent {
	normalized := dedupeNormalized(urls)
	results := make([]types.AcquiredContent, len(normalized))

	var misses []int
	for i, u := range normalized {
		if cached, ok := c.cache.GetContent(u); ok {
			results[i] = cached
			continue
		}
		misses = append(misses, i)
	}
	c.acquireBatches(ctx, normalized, misses, concurrency, opts, results, w)
	return results
}

// acquireBatches fills results[i] for every index in misses. Batches run
// strictly in sequence; URLs within a batch run concurrently with
// settle-all semantics, so slot i always holds URL i's outcome.
func (c *Coordinator) acquireBatches(ctx context.Context, urls []string, misses []int, concurrency int, opts Options, results []types.AcquiredContent, w io.Writer) {
	selector := c.selector
	if opts.Selector != nil {
		selector = opts.Selector
	}

	for start := 0; start < len(misses); start += concurrency {
		end := start + concurrency
		if end > len(misses) {
			end = len(misses)
		}

		g := new(errgroup.Group)
		for _, idx := range misses[start:end] {
			idx := idx
			u := urls[idx]
			g.Go(func() error {
				content := c.fetchOne(ctx, selector(u), u)
				results[idx] = content
				if content.OK() {
					c.cache.PutContent(u, content)
				} else {
					fmt.Fprintf(w, "warning: acquisition failed for %s: %s\n", u, content.Error)
				}
				return nil
			})
		}
		g.Wait()
	}
}

// fetchOne runs a single fetch with the per-URL timeout and retry budget.
// Failures never propagate: they land in the result's Error field.
func (c *Coordinator) fetchOne(ctx context.Context, fetcher capability.Fetcher, url string) types.AcquiredContent {
	var content types.AcquiredContent
	err := retry.Do(ctx, c.cfg.MaxRetries, func(ctx context.Context) error {
		fctx := ctx
		if c.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
			defer cancel()
		}

		fetched, ferr := fetcher.Fetch(fctx, url)
		if ferr != nil {
			return ferr
		}
		if fetched.Error != "" {
			return errors.New(fetched.Error)
		}
		content = fetched
		return nil
	})
	if err != nil {
		return types.AcquiredContent{URL: url, Error: err.Error()}
	}
	if content.URL == "" {
		content.URL = url
	}
	return content
}

// Release frees every fetcher's external resources. It is best effort:
// failures are written to w and never escalated.
func (c *Coordinator) Release(ctx context.Context, w io.Writer) {
	for _, f := range c.fetchers {
		r, ok := f.(capability.ResourceReleaser)
		if !ok {
			continue
		}
		if err := r.Release(ctx); err != nil {
			fmt.Fprintf(w, "warning: releasing %s resources: %v\n", f.Name(), err)
		}
	}
}

// dedupeNormalized normalizes the input URLs and drops duplicates, keeping
// first occurrences in order.
func dedupeNormalized(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		n := urlnorm.Normalize(u)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
