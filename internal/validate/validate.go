// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate scores candidate sources for credibility using domain
// trust, recency, and content-quality heuristics. Every check except URL
// parsing degrades the score rather than failing the source; a malformed
// URL is the one hard rejection.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/deepresearch/pkg/types"
)

const baseScore = 50

// domainScore is a cached per-domain adjustment.
type domainScore struct {
	delta   int
	trusted bool
	blocked bool
}

// Validator scores sources against configurable criteria. It caches domain
// adjustments for the lifetime of the instance; one validator belongs to
// one run and is not safe for concurrent use.
type Validator struct {
	trusted     []string
	blocked     []string
	domainCache map[string]domainScore
	now         func() time.Time
}

// Option customizes a Validator.
type Option func(*Validator)

// WithTrustedDomains replaces the default trusted-domain list.
func WithTrustedDomains(domains []string) Option {
	return func(v *Validator) { v.trusted = domains }
}

// WithBlockedDomains replaces the default blocked-domain list.
func WithBlockedDomains(domains []string) Option {
	return func(v *Validator) { v.blocked = domains }
}

// withClock overrides time.Now for recency tests.
func withClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New returns a Validator with the default domain lists.
func New(opts ...Option) *Validator {
	v := &Validator{
		trusted:     defaultTrustedDomains,
		blocked:     defaultBlockedDomains,
		domainCache: make(map[string]domainScore),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var (
	citationPattern  = regexp.MustCompile(`\[\d+\]|\(\d{4}\)`)
	clickbaitPhrases = []string{
		"you won't believe",
		"shocking",
		"this one trick",
		"doctors hate",
		"will blow your mind",
		"what happened next",
	}
)

// Validate scores a single source. The result is never an error: a
// malformed URL yields an invalid verdict with score 0, and every other
// check only adjusts the score or appends warnings.
func (v *Validator) Validate(source types.SearchResult, criteria types.ValidationConfig) types.SourceValidation {
	val := types.SourceValidation{URL: source.URL, IsValid: true}

	u, err := url.Parse(source.URL)
	if err != nil || u.Host == "" || u.Scheme == "" {
		val.IsValid = false
		val.CredibilityScore = 0
		val.Reasons = append(val.Reasons, "Invalid URL")
		return val
	}
	host := strings.ToLower(u.Hostname())

	score := baseScore

	delta, trusted, blocked := v.domainAdjustment(host)
	score += delta
	if trusted {
		val.Reasons = append(val.Reasons, "trusted domain")
	}
	if blocked {
		val.Reasons = append(val.Reasons, "blocked domain list match")
	}

	score = v.applyCriteria(source, u, host, criteria, score, &val)
	score += qualityScore(source)

	if criteria.MinCredibility > 0 && score < criteria.MinCredibility {
		val.IsValid = false
		val.Reasons = append(val.Reasons,
			fmt.Sprintf("credibility score %d below minimum %d", score, criteria.MinCredibility))
	}

	val.CredibilityScore = clamp(score)
	return val
}

// ValidateAll validates each source independently, preserving input order.
// A failing source never aborts the batch.
func (v *Validator) ValidateAll(sources []types.SearchResult, criteria types.ValidationConfig) []types.SourceValidation {
	out := make([]types.SourceValidation, len(sources))
	for i, s := range sources {
		out[i] = v.Validate(s, criteria)
	}
	return out
}

func (v *Validator) applyCriteria(source types.SearchResult, u *url.URL, host string, criteria types.ValidationConfig, score int, val *types.SourceValidation) int {
	if criteria.RequireHTTPS && u.Scheme != "https" {
		score -= 10
		val.Warnings = append(val.Warnings, "not served over HTTPS")
	}

	if len(criteria.AllowedDomains) > 0 {
		allowed := false
		for _, d := range criteria.AllowedDomains {
			if strings.Contains(host, d) {
				allowed = true
				break
			}
		}
		if !allowed {
			val.IsValid = false
			val.Reasons = append(val.Reasons, "domain not in allow list")
		}
	}

	for _, d := range criteria.BlockedDomains {
		if strings.Contains(host, d) {
			val.IsValid = false
			val.Reasons = append(val.Reasons, "domain in block list")
			break
		}
	}

	if criteria.MaxAgeDays > 0 && !source.PublishedDate.IsZero() {
		age := v.now().Sub(source.PublishedDate)
		if age > time.Duration(criteria.MaxAgeDays)*24*time.Hour {
			score -= 5
			val.Warnings = append(val.Warnings,
				fmt.Sprintf("content older than %d days", criteria.MaxAgeDays))
		}
	}

	if criteria.RequireDate && source.PublishedDate.IsZero() {
		score -= 5
		val.Warnings = append(val.Warnings, "no publish date")
	}

	if criteria.MinContentLength > 0 && len(source.Content) < criteria.MinContentLength {
		score -= 10
		val.Warnings = append(val.Warnings,
			fmt.Sprintf("content shorter than %d characters", criteria.MinContentLength))
	}

	return score
}

// qualityScore applies content-quality heuristics independent of criteria.
func qualityScore(source types.SearchResult) int {
	score := 0
	if source.Author != "" {
		score += 5
	}
	if len(source.Content) > 500 {
		score += 5
	}
	if len(source.Content) > 1000 {
		score += 5
	}
	if citationPattern.MatchString(source.Content) {
		score += 10
	}
	if len(source.Title) > 10 {
		score += 5
	}
	lower := strings.ToLower(source.Title)
	for _, phrase := range clickbaitPhrases {
		if strings.Contains(lower, phrase) {
			score -= 15
			break
		}
	}
	return score
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
