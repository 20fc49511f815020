// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import "strings"

// Trusted and blocked domain lists are ordered slices, not sets: each scan
// stops on its first match, so iteration order is part of the behavior. A
// domain appearing in both lists collects both adjustments.
var defaultTrustedDomains = []string{
	"wikipedia.org",
	"arxiv.org",
	"nature.com",
	"sciencedirect.com",
	"ieee.org",
	"acm.org",
	"reuters.com",
	"apnews.com",
	"bbc.com",
	"github.com",
	"stackoverflow.com",
}

var defaultBlockedDomains = []string{
	"pinterest.",
	"quora.com",
	"answers.yahoo.com",
	"ehow.com",
}

// tldAdjustments stack on top of any trusted/blocked match, scanned in
// order.
var tldAdjustments = []struct {
	suffix string
	delta  int
}{
	{".edu", 20},
	{".gov", 25},
	{".org", 10},
	{".io", -5},
	{".info", -10},
}

const (
	trustedBonus   = 30
	blockedPenalty = -50
)

// domainAdjustment computes the score delta for a host: trusted-list scan
// (first match wins), blocked-list scan (first match wins), then TLD
// adjustments. Results are cached per validator instance since a run tends
// to revisit the same domains.
func (v *Validator) domainAdjustment(host string) (delta int, trusted, blocked bool) {
	if cached, ok := v.domainCache[host]; ok {
		return cached.delta, cached.trusted, cached.blocked
	}

	for _, d := range v.trusted {
		if strings.Contains(host, d) || strings.HasSuffix(host, d) {
			delta += trustedBonus
			trusted = true
			break
		}
	}
	for _, d := range v.blocked {
		if strings.Contains(host, d) {
			delta += blockedPenalty
			blocked = true
			break
		}
	}
	for _, tld := range tldAdjustments {
		if strings.HasSuffix(host, tld.suffix) {
			delta += tld.delta
		}
	}

	v.domainCache[host] = domainScore{delta: delta, trusted: trusted, blocked: blocked}
	return delta, trusted, blocked
}
