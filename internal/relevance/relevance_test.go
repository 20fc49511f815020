// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"math"
	"testing"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"simple", "quantum computing", []string{"quantum", "computing"}},
		{"short words dropped", "the AI of tomorrow", []string{"tomorrow"}},
		{"punctuation split", "what is quantum-computing?", []string{"what", "quantum", "computing"}},
		{"empty", "", nil},
		{"all short", "a of is", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Terms(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Terms(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Terms(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		terms []string
		want  float64
	}{
		{"no match", "completely unrelated text here", []string{"quantum"}, 0},
		{"empty text", "", []string{"quantum"}, 0},
		{"no terms", "quantum computing", nil, 0},
		// 2 matches ("quantum" twice) over 4 words = 50.
		{"two of four", "quantum quantum other words", []string{"quantum"}, 50},
		// Case-insensitive whole-word matching.
		{"case folded", "Quantum QUANTUM", []string{"quantum"}, 100},
		// "quant" must not match inside "quantum".
		{"whole word only", "quantum mechanics explained", []string{"quant"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.text, tt.terms)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score = %f, want %f", got, tt.want)
			}
		})
	}
}

// Score is a pure function: identical inputs yield identical outputs.
func TestScoreIdempotent(t *testing.T) {
	text := "quantum computing applies quantum mechanics to computation"
	terms := Terms("quantum computing hardware")
	first := Score(text, terms)
	for i := 0; i < 10; i++ {
		if got := Score(text, terms); got != first {
			t.Fatalf("Score changed between calls: %f then %f", first, got)
		}
	}
	if first <= 0 {
		t.Fatalf("Score = %f, want > 0", first)
	}
}

func TestScoreQueryMatchesExplicitTerms(t *testing.T) {
	text := "large language models and retrieval"
	if ScoreQuery(text, "language models") != Score(text, Terms("language models")) {
		t.Error("ScoreQuery disagrees with Score over extracted terms")
	}
}
