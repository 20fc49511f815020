// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import "sort"

// toneGuidance maps tone keywords to one sentence of stylistic guidance
// appended to the system prompt. An unknown or empty tone appends nothing.
var toneGuidance = map[string]string{
	"objective":     "Maintain a strictly neutral, impartial voice that presents evidence without editorializing.",
	"academic":      "Write in a formal academic register with precise terminology and careful hedging of uncertain claims.",
	"casual":        "Write in a relaxed, conversational voice as if explaining to a curious friend.",
	"persuasive":    "Build a compelling argument that guides the reader toward the best-supported conclusion.",
	"authoritative": "Write with confident, decisive language that conveys deep command of the subject.",
	"formal":        "Use formal business prose, avoiding contractions and colloquialisms throughout.",
	"analytical":    "Emphasize systematic examination of evidence, causes, and relationships between findings.",
	"informative":   "Prioritize clear, complete transfer of information over rhetorical flourish.",
	"explanatory":   "Explain concepts step by step, defining terms the first time they appear.",
	"descriptive":   "Use rich, concrete description that helps the reader visualize the subject.",
	"critical":      "Scrutinize the evidence, surfacing weaknesses, gaps, and conflicting findings.",
	"comparative":   "Organize the discussion around explicit comparisons between the alternatives found.",
	"speculative":   "Explore plausible implications and future directions, clearly flagged as speculation.",
	"reflective":    "Weigh the findings thoughtfully, acknowledging how perspective shapes interpretation.",
	"narrative":     "Tell the findings as a coherent story with a beginning, development, and resolution.",
	"optimistic":    "Highlight opportunities and encouraging developments where the evidence supports them.",
	"simple":        "Use short sentences and plain words a general reader can follow without background.",
}

// Tones lists the supported tone keywords.
func Tones() []string {
	out := make([]string, 0, len(toneGuidance))
	for k := range toneGuidance {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidTone reports whether the keyword is a supported tone.
func ValidTone(tone string) bool {
	_, ok := toneGuidance[tone]
	return ok
}

// toneFragment returns the guidance sentence for a tone keyword, or "".
func toneFragment(tone string) string {
	return toneGuidance[tone]
}
