// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llmutil

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"bare array", `["a", "b"]`, `["a", "b"]`},
		{"fenced", "```json\n[\"a\"]\n```", `["a"]`},
		{"fenced without language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose", `Here is the result: ["a", "b"]`, `["a", "b"]`},
		{"trailing prose", `["a"] Hope that helps!`, `["a"]`},
		{"no json at all", "I cannot answer that.", "I cannot answer that."},
		{"whitespace", "  \n[1, 2]\n  ", "[1, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
