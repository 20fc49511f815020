// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package contextbuild

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/deepresearch/internal/relevance"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	markdownArtifacts = regexp.MustCompile("[*_`#>]{1,}")
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	sentencePattern   = regexp.MustCompile(`[^.!?]+[.!?]*\s*`)
)

// Clean normalizes raw page text: HTML is reduced to its visible text,
// markdown decoration is stripped, and whitespace is collapsed.
func Clean(text string) string {
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		text = stripHTML(text)
	}
	text = markdownArtifacts.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// stripHTML extracts visible text from markup, falling back to a tag-strip
// regex when the document does not parse.
func stripHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return htmlTagPattern.ReplaceAllString(text, " ")
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}

// EstimateTokens approximates the token count of text as the average of
// the character-count/4 and word-count×1.3 heuristics.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	byChars := float64(len(text)) / 4
	byWords := float64(len(strings.Fields(text))) * 1.3
	return int((byChars + byWords) / 2)
}

// SplitText segments text into sentence-bounded chunks whose token
// estimates stay under maxTokens. A single sentence longer than the
// ceiling becomes its own chunk rather than being cut mid-sentence.
func SplitText(text string, maxTokens int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		candidate := current.String() + sentence
		if current.Len() > 0 && EstimateTokens(candidate) > maxTokens {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

// mergeKeyLength bounds the dedup key; near-duplicate prose differing
// after the first 100 normalized characters still passes.
const mergeKeyLength = 100

// Merge concatenates context batches and drops entries whose normalized
// prefix was already seen, keeping first occurrences in order.
func Merge(batches ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, batch := range batches {
		for _, entry := range batch {
			key := mergeKey(entry)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, entry)
		}
	}
	return merged
}

func mergeKey(s string) string {
	s = strings.ToLower(whitespacePattern.ReplaceAllString(strings.TrimSpace(s), " "))
	if len(s) > mergeKeyLength {
		s = s[:mergeKeyLength]
	}
	return s
}

// Rerank reorders an existing context list by relevance to a different
// query, most relevant first. Ties keep their input order.
func Rerank(contexts []string, query string) []string {
	terms := relevance.Terms(query)
	scores := make([]float64, len(contexts))
	order := make([]int, len(contexts))
	for i, c := range contexts {
		scores[i] = relevance.Score(c, terms)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	out := make([]string, len(contexts))
	for i, idx := range order {
		out[i] = contexts[idx]
	}
	return out
}
