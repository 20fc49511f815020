// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package static fetches page content over plain HTTP and extracts
// readable text with goquery. It handles server-rendered pages; sites
// that require script execution need a rendering fetcher instead.
package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/deepresearch/internal/httputil"
	"github.com/pdiddy/deepresearch/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "deepresearch/0.1"

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 4 << 20
)

// Fetcher retrieves static pages. Fetch reports ordinary failures inside
// the returned content rather than as an error, so one bad page never
// aborts a batch.
type Fetcher struct {
	client *http.Client
	cfg    types.HTTPConfig
}

// New returns a static-page Fetcher.
func New(cfg types.HTTPConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
	}
}

// Name returns the fetcher identifier.
func (f *Fetcher) Name() string { return "static" }

// Fetch downloads the page and extracts its title, text, and image URLs.
// The error return is reserved for context cancellation; everything else
// lands in content.Error.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (types.AcquiredContent, error) {
	content := types.AcquiredContent{URL: pageURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		content.Error = fmt.Sprintf("invalid URL: %v", err)
		return content, nil
	}
	userAgent := f.cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httputil.DoWithRetry(ctx, f.client, req, 0)
	if err != nil {
		if ctx.Err() != nil {
			return content, ctx.Err()
		}
		content.Error = fmt.Sprintf("request failed: %v", err)
		return content, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		content.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return content, nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		content.Error = fmt.Sprintf("parsing page: %v", err)
		return content, nil
	}

	content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	content.Text = extractText(doc)
	content.Images = extractImages(doc, resp.Request.URL)
	if content.Text == "" {
		content.Error = "no readable text"
	}
	return content, nil
}

// extractText returns the page's visible text with scripts, styles, and
// navigation chrome removed.
func extractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var parts []string
	root.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return strings.Join(strings.Fields(root.Text()), " ")
	}
	return strings.Join(parts, "\n\n")
}

// extractImages collects image URLs, resolving relative references
// against the final request URL.
func extractImages(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var images []string
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		if base != nil {
			if ref, err := url.Parse(src); err == nil {
				src = base.ResolveReference(ref).String()
			}
		}
		if _, ok := seen[src]; ok {
			return
		}
		seen[src] = struct{}{}
		images = append(images, src)
	})
	return images
}
