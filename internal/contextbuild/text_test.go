// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package contextbuild

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "a  b\n\nc\td", "a b c d"},
		{"strips markdown bold", "**important** point", "important point"},
		{"strips heading marks", "## Title here", "Title here"},
		{"trims", "  padded  ", "padded"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanStripsHTML(t *testing.T) {
	in := `<html><head><style>body{color:red}</style></head>
<body><p>Visible text.</p><script>var x = 1;</script></body></html>`
	got := Clean(in)
	if !strings.Contains(got, "Visible text.") {
		t.Errorf("Clean lost visible text: %q", got)
	}
	if strings.Contains(got, "var x") || strings.Contains(got, "color:red") {
		t.Errorf("Clean kept script/style content: %q", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", got)
	}
	// 100 words of 8 chars+space: chars ≈ 900, words = 100.
	// (900/4 + 100×1.3)/2 ≈ 177.
	text := strings.TrimSpace(strings.Repeat("abcdefgh ", 100))
	got := EstimateTokens(text)
	if got < 160 || got < 1 || got > 190 {
		t.Errorf("EstimateTokens = %d, want ~177", got)
	}
}

func TestSplitText(t *testing.T) {
	t.Run("short text unsplit", func(t *testing.T) {
		got := SplitText("One sentence. Two sentences.", 1000)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
	})

	t.Run("splits on sentence boundaries", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 40; i++ {
			sb.WriteString("This is a filler sentence with several words in it. ")
		}
		chunks := SplitText(sb.String(), 100)
		if len(chunks) < 2 {
			t.Fatalf("len = %d, want several chunks", len(chunks))
		}
		for i, c := range chunks {
			if EstimateTokens(c) > 100 {
				t.Errorf("chunk %d estimate %d exceeds ceiling", i, EstimateTokens(c))
			}
			if !strings.HasSuffix(strings.TrimSpace(c), ".") {
				t.Errorf("chunk %d does not end on a sentence boundary: %q", i, c)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := SplitText("   ", 10); got != nil {
			t.Errorf("SplitText(blank) = %v, want nil", got)
		}
	})
}

func TestMerge(t *testing.T) {
	a := []string{"The quick brown fox jumps over the lazy dog.", "Entirely different content."}
	b := []string{"The  quick  brown fox jumps over the lazy dog.", "A third entry."}

	merged := Merge(a, b)
	if len(merged) != 3 {
		t.Fatalf("len = %d, want 3 (whitespace variant deduplicated): %v", len(merged), merged)
	}
	if merged[0] != a[0] {
		t.Error("first occurrence must win")
	}
}

func TestMergeCoarseKey(t *testing.T) {
	prefix := strings.Repeat("x", 100)
	a := []string{prefix + " tail one"}
	b := []string{prefix + " tail two"}
	// The key is the first 100 normalized characters, so entries differing
	// only afterward collapse into one.
	merged := Merge(a, b)
	if len(merged) != 1 {
		t.Errorf("len = %d, want 1", len(merged))
	}
}

func TestRerank(t *testing.T) {
	contexts := []string{
		"nothing relevant here at all",
		"climate change and climate policy",
		"climate summary",
	}
	got := Rerank(contexts, "climate")
	// "climate summary" is half climate; the policy line is 2/5.
	if got[0] != "climate summary" {
		t.Errorf("got[0] = %q", got[0])
	}
	if got[2] != "nothing relevant here at all" {
		t.Errorf("got[2] = %q", got[2])
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}
