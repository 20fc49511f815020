// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package urlnorm normalizes URLs for deduplication and cache keying.
package urlnorm

import (
	"net/url"
	"strings"
)

// Normalize returns the canonical form of a URL used as a dedup and cache
// key: lowercased scheme and host, fragment removed, trailing slash
// stripped. Unparseable input is returned trimmed so malformed URLs still
// dedup against byte-identical copies.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return strings.TrimSuffix(raw, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	s := u.String()
	return strings.TrimSuffix(s, "/")
}

// Domain returns the lowercased hostname of a URL, or "" when unparseable.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
