// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance scores text against a query by weighted term overlap.
// The scorer is a pure function of its inputs; the retrieval and context
// building stages both rank with it.
package relevance

import (
	"regexp"
	"strings"
)

// minTermLength excludes short function words ("a", "of", "is") from scoring.
const minTermLength = 3

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// Terms extracts the scoring terms from a query: lowercased words of at
// least three characters, in query order, duplicates preserved.
func Terms(query string) []string {
	var terms []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(query), -1) {
		if len(w) >= minTermLength {
			terms = append(terms, w)
		}
	}
	return terms
}

// Score counts whole-word, case-insensitive occurrences of each term inside
// text, normalized by the text's word count and scaled by 100. Empty text or
// no matching terms scores 0. The word count is treated as at least 1 so an
// empty text never divides by zero.
func Score(text string, terms []string) float64 {
	if text == "" || len(terms) == 0 {
		return 0
	}

	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0
	}

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	matches := 0
	for _, term := range terms {
		if len(term) < minTermLength {
			continue
		}
		matches += counts[strings.ToLower(term)]
	}

	total := len(words)
	if total < 1 {
		total = 1
	}
	return float64(matches) / float64(total) * 100
}

// ScoreQuery is Score with term extraction applied to a raw query string.
func ScoreQuery(text, query string) float64 {
	return Score(text, Terms(query))
}
