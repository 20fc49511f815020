// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmutil provides helpers for working with LLM responses shared
// across stages.
package llmutil

import "strings"

// ExtractJSON strips markdown fences and surrounding prose from an LLM
// response, keeping the outermost JSON object or array. Models frequently
// wrap structured output in ```json fences or lead with a sentence; callers
// unmarshal the returned slice and fall back to a safe default on failure.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return s
	}
	return s[start : end+1]
}
