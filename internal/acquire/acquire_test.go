// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deepresearch/internal/retry"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

func init() {
	retry.BaseDelay = 1 * time.Millisecond
}

// --- stub fetcher ---

type stubFetcher struct {
	name string
	mu   sync.Mutex
	// failures maps URL to the number of failing attempts before success.
	failures map[string]int
	calls    map[string]int
	perma    map[string]string // URL → permanent error
	released int32
	text     string
}

func newStubFetcher(name string) *stubFetcher {
	return &stubFetcher{
		name:     name,
		failures: make(map[string]int),
		calls:    make(map[string]int),
		perma:    make(map[string]string),
		text:     "page text",
	}
}

func (f *stubFetcher) Name() string { return f.name }

func (f *stubFetcher) Fetch(_ context.Context, url string) (types.AcquiredContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if msg, ok := f.perma[url]; ok {
		return types.AcquiredContent{URL: url, Error: msg}, nil
	}
	if f.failures[url] > 0 {
		f.failures[url]--
		return types.AcquiredContent{URL: url, Error: "timeout"}, nil
	}
	return types.AcquiredContent{URL: url, Title: "T", Text: f.text}, nil
}

func (f *stubFetcher) Release(context.Context) error {
	atomic.AddInt32(&f.released, 1)
	return nil
}

func (f *stubFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *stubFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func newCoordinator(t *testing.T, f capability.Fetcher, cfg types.AcquisitionConfig) *Coordinator {
	t.Helper()
	c, err := New([]capability.Fetcher{f}, nil, nil, cfg)
	require.NoError(t, err)
	return c
}

func TestAcquireDeduplicatesInput(t *testing.T) {
	f := newStubFetcher("static")
	c := newCoordinator(t, f, types.AcquisitionConfig{MaxRetries: 1})

	urls := []string{
		"https://a.com/x",
		"https://a.com/x/",
		"https://a.com/x#frag",
		"https://b.com/y",
	}
	out := c.Acquire(context.Background(), urls, Options{}, io.Discard)

	assert.Len(t, out, 2)
	assert.Equal(t, 1, f.callCount("https://a.com/x"))
	assert.Equal(t, 1, f.callCount("https://b.com/y"))
}

// A cache hit returns the stored content without a capability call, and
// output size equals deduplicated misses plus cache hits.
func TestAcquireCacheHits(t *testing.T) {
	f := newStubFetcher("static")
	c := newCoordinator(t, f, types.AcquisitionConfig{MaxRetries: 1})

	first := c.Acquire(context.Background(), []string{"https://a.com/x"}, Options{}, io.Discard)
	require.Len(t, first, 1)
	require.True(t, first[0].OK())
	before := f.totalCalls()

	second := c.Acquire(context.Background(), []string{"https://a.com/x", "https://b.com/y"}, Options{}, io.Discard)
	assert.Len(t, second, 2)
	assert.Equal(t, "page text", second[0].Text)
	// Only the new URL triggered a fetch.
	assert.Equal(t, before+1, f.totalCalls())
}

func TestAcquireErrorIsolation(t *testing.T) {
	f := newStubFetcher("static")
	f.perma["https://bad.com/x"] = "HTTP 500"
	c := newCoordinator(t, f, types.AcquisitionConfig{MaxRetries: 1, Concurrency: 2})

	out := c.Acquire(context.Background(),
		[]string{"https://good.com/a", "https://bad.com/x", "https://good.com/b"},
		Options{}, io.Discard)

	require.Len(t, out, 3)
	assert.True(t, out[0].OK())
	assert.False(t, out[1].OK())
	assert.Contains(t, out[1].Error, "HTTP 500")
	assert.True(t, out[2].OK())
}

// Output order follows input order, not completion order.
func TestAcquireOutputOrder(t *testing.T) {
	f := newStubFetcher("static")
	c := newCoordinator(t, f, types.AcquisitionConfig{MaxRetries: 1, Concurrency: 3})

	urls := []string{"https://a.com/1", "https://b.com/2", "https://c.com/3", "https://d.com/4"}
	out := c.Acquire(context.Background(), urls, Options{}, io.Discard)

	require.Len(t, out, 4)
	for i, u := range urls {
		assert.Equal(t, u, out[i].URL)
	}
}

// A URL that fails twice then succeeds is fetched exactly three times and
// ends up without an error.
func TestAcquireRetriesTransientFailure(t *testing.T) {
	f := newStubFetcher("static")
	f.failures["https://flaky.com/x"] = 2
	c := newCoordinator(t, f, types.AcquisitionConfig{MaxRetries: 3})

	out := c.Acquire(context.Background(), []string{"https://flaky.com/x"}, Options{}, io.Discard)

	require.Len(t, out, 1)
	assert.True(t, out[0].OK(), "third attempt should succeed: %s", out[0].Error)
	assert.Equal(t, 3, f.callCount("https://flaky.com/x"))
}

// Failed acquisitions must not poison the cache.
func TestAcquireFailureNotCached(t *testing.T) {
	f := newStubFetcher("static")
	f.failures["https://flaky.com/x"] = 1
	c := newCoordinator(t, f, types.AcquisitionConfig{MaxRetries: 1})

	out := c.Acquire(context.Background(), []string{"https://flaky.com/x"}, Options{}, io.Discard)
	require.False(t, out[0].OK())

	// The failure consumed the single failing attempt; retrying now succeeds.
	out = c.Acquire(context.Background(), []string{"https://flaky.com/x"}, Options{}, io.Discard)
	assert.True(t, out[0].OK())
	assert.Equal(t, 2, f.callCount("https://flaky.com/x"))
}

func TestDomainSelector(t *testing.T) {
	static := newStubFetcher("static")
	rendering := newStubFetcher("rendering")
	sel := DomainSelector(static, rendering, []string{"app.example.com", "twitter.com"})

	assert.Equal(t, capability.Fetcher(rendering), sel("https://app.example.com/page"))
	assert.Equal(t, capability.Fetcher(rendering), sel("https://mobile.twitter.com/user"))
	assert.Equal(t, capability.Fetcher(static), sel("https://plain.org/article"))
}

func TestAcquireSelectorOverride(t *testing.T) {
	static := newStubFetcher("static")
	rendering := newStubFetcher("rendering")
	c, err := New([]capability.Fetcher{static, rendering},
		DomainSelector(static, rendering, nil), nil, types.AcquisitionConfig{MaxRetries: 1})
	require.NoError(t, err)

	forced := func(string) capability.Fetcher { return rendering }
	c.Acquire(context.Background(), []string{"https://plain.org/a"}, Options{Selector: forced}, io.Discard)

	assert.Equal(t, 1, rendering.callCount("https://plain.org/a"))
	assert.Equal(t, 0, static.callCount("https://plain.org/a"))
}

func TestAcquirePriorityFirst(t *testing.T) {
	f := newStubFetcher("static")
	c := newCoordinator(t, f, types.AcquisitionConfig{MaxRetries: 1, Concurrency: 3})

	out := c.AcquirePriority(context.Background(),
		[]string{"https://vip.com/1", "https://vip.com/2"},
		[]string{"https://vip.com/1", "https://rest.com/a"},
		Options{}, io.Discard)

	require.Len(t, out, 3)
	assert.Equal(t, "https://vip.com/1", out[0].URL)
	assert.Equal(t, "https://vip.com/2", out[1].URL)
	assert.Equal(t, "https://rest.com/a", out[2].URL)
	// The overlap URL is fetched once only.
	assert.Equal(t, 1, f.callCount("https://vip.com/1"))
}

func TestReleaseAllFetchers(t *testing.T) {
	a := newStubFetcher("a")
	b := newStubFetcher("b")
	c, err := New([]capability.Fetcher{a, b}, nil, nil, types.AcquisitionConfig{})
	require.NoError(t, err)

	c.Release(context.Background(), io.Discard)
	assert.Equal(t, int32(1), atomic.LoadInt32(&a.released))
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.released))
}

func TestNewRequiresFetchers(t *testing.T) {
	_, err := New(nil, nil, nil, types.AcquisitionConfig{})
	assert.Error(t, err)
}

// A fetcher returning a hard error (not an error-tagged result) still
// produces an error-tagged result after retries.
type erroringFetcher struct{ calls int32 }

func (e *erroringFetcher) Name() string { return "erroring" }

func (e *erroringFetcher) Fetch(context.Context, string) (types.AcquiredContent, error) {
	atomic.AddInt32(&e.calls, 1)
	return types.AcquiredContent{}, errors.New("connection refused")
}

func TestAcquireHardErrorDegraded(t *testing.T) {
	e := &erroringFetcher{}
	c, err := New([]capability.Fetcher{e}, nil, nil, types.AcquisitionConfig{MaxRetries: 2})
	require.NoError(t, err)

	out := c.Acquire(context.Background(), []string{"https://a.com/x"}, Options{}, io.Discard)
	require.Len(t, out, 1)
	assert.False(t, out[0].OK())
	assert.Contains(t, out[0].Error, "connection refused")
	assert.Equal(t, int32(2), atomic.LoadInt32(&e.calls))
}
