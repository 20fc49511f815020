// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deepresearch/internal/httputil"
	"github.com/pdiddy/deepresearch/pkg/capability"
	"github.com/pdiddy/deepresearch/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Tech News</title>
<item>
  <title>Quantum computing reaches new milestone</title>
  <link>https://news.example.com/quantum-milestone</link>
  <description>Researchers demonstrate quantum error correction at scale.</description>
  <pubDate>Mon, 18 Aug 2025 10:00:00 GMT</pubDate>
  <author>jane@example.com (Jane Roe)</author>
</item>
<item>
  <title>Gardening tips for autumn</title>
  <link>https://news.example.com/gardening</link>
  <description>How to prepare your garden for colder weather.</description>
  <pubDate>Tue, 19 Aug 2025 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Quantum chips hit the market</title>
  <link>https://news.example.com/quantum-chips</link>
  <description>Vendors ship the first commercial quantum accelerators.</description>
</item>
</channel>
</rss>`

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSearchMatchesByTermOverlap(t *testing.T) {
	ts := feedServer(t, http.StatusOK, feedXML)
	p := New([]string{ts.URL}, types.HTTPConfig{})

	results, err := p.Search(context.Background(), "quantum computing", capability.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	urls := []string{results[0].URL, results[1].URL}
	assert.Contains(t, urls, "https://news.example.com/quantum-milestone")
	assert.Contains(t, urls, "https://news.example.com/quantum-chips")

	// Entries are sorted by relevance, most relevant first.
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	for _, r := range results {
		assert.NotEqual(t, "https://news.example.com/gardening", r.URL)
	}
}

func TestSearchResultFields(t *testing.T) {
	ts := feedServer(t, http.StatusOK, feedXML)
	p := New([]string{ts.URL}, types.HTTPConfig{})

	results, err := p.Search(context.Background(), "quantum milestone", capability.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	first := results[0]
	assert.Equal(t, "Quantum computing reaches new milestone", first.Title)
	assert.Equal(t, "https://news.example.com/quantum-milestone", first.URL)
	assert.Contains(t, first.Snippet, "quantum error correction")
	assert.Equal(t, 2025, first.PublishedDate.Year())
}

func TestSearchRecentOnly(t *testing.T) {
	ts := feedServer(t, http.StatusOK, feedXML)
	p := New([]string{ts.URL}, types.HTTPConfig{})

	// All fixture entries are older than 30 days; dateless ones are
	// excluded too.
	results, err := p.Search(context.Background(), "quantum computing", capability.SearchOptions{Recent: true})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMaxResults(t *testing.T) {
	ts := feedServer(t, http.StatusOK, feedXML)
	p := New([]string{ts.URL}, types.HTTPConfig{})

	results, err := p.Search(context.Background(), "quantum computing", capability.SearchOptions{MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchEmptyQuery(t *testing.T) {
	p := New(nil, types.HTTPConfig{})
	_, err := p.Search(context.Background(), "a?!", capability.SearchOptions{})
	assert.Error(t, err)
}

func TestSearchAllFeedsFailing(t *testing.T) {
	ts := feedServer(t, http.StatusNotFound, "not found")
	p := New([]string{ts.URL}, types.HTTPConfig{})

	_, err := p.Search(context.Background(), "quantum computing", capability.SearchOptions{})
	require.Error(t, err)
	assert.False(t, capability.IsAuthError(err))
}

func TestSearchAuthFailure(t *testing.T) {
	ts := feedServer(t, http.StatusForbidden, "forbidden")
	p := New([]string{ts.URL}, types.HTTPConfig{})

	_, err := p.Search(context.Background(), "quantum computing", capability.SearchOptions{})
	require.Error(t, err)
	assert.True(t, capability.IsAuthError(err))
}

func TestSearchPartialFeedFailure(t *testing.T) {
	good := feedServer(t, http.StatusOK, feedXML)
	bad := feedServer(t, http.StatusNotFound, "gone")
	p := New([]string{bad.URL, good.URL}, types.HTTPConfig{})

	results, err := p.Search(context.Background(), "quantum computing", capability.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
