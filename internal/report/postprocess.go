// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/deepresearch/pkg/types"
)

// maxReferences caps the appended references section.
const maxReferences = 20

var (
	blankLinesPattern   = regexp.MustCompile(`\n{3,}`)
	hyphenBulletPattern = regexp.MustCompile(`(?m)^- `)
	doubledBoldPattern  = regexp.MustCompile(`\*{4}`)
	referencesHeading   = regexp.MustCompile(`(?mi)^#{1,6}\s*(references|sources)\b`)
)

// postProcess applies the uniform report fixups: leading title, metadata
// banner, references section, and markdown normalization.
func (s *Synthesizer) postProcess(text string, rctx types.ResearchContext) string {
	text = strings.TrimSpace(text)

	text = ensureTitle(text, rctx.Query)
	text = insertMetadata(text, rctx, s.now())
	if !referencesHeading.MatchString(text) {
		text = appendReferences(text, rctx.Sources)
	}

	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	text = hyphenBulletPattern.ReplaceAllString(text, "• ")
	text = doubledBoldPattern.ReplaceAllString(text, "**")
	return strings.TrimSpace(text) + "\n"
}

// ensureTitle guarantees the document opens with a top-level heading,
// deriving one from the query when the model omitted it.
func ensureTitle(text, query string) string {
	if strings.HasPrefix(text, "# ") {
		return text
	}
	title := strings.TrimSpace(query)
	if title == "" {
		title = "Research Report"
	}
	return "# " + title + "\n\n" + text
}

// insertMetadata places a one-line banner directly under the title.
func insertMetadata(text string, rctx types.ResearchContext, now time.Time) string {
	banner := fmt.Sprintf("*%s · %d sources · %s report*",
		now.Format("2006-01-02"), len(rctx.Sources), reportTypeLabel(rctx.ReportType))

	lines := strings.SplitN(text, "\n", 2)
	if len(lines) == 1 {
		return lines[0] + "\n\n" + banner
	}
	return lines[0] + "\n\n" + banner + "\n" + lines[1]
}

func reportTypeLabel(rt types.ReportType) string {
	if rt == "" {
		return string(types.ReportResearch)
	}
	return string(rt)
}

// appendReferences adds a references section listing up to maxReferences
// sources with title, link, and date when known.
func appendReferences(text string, sources []types.SearchResult) string {
	if len(sources) == 0 {
		return text
	}
	if len(sources) > maxReferences {
		sources = sources[:maxReferences]
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n## References\n\n")
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		fmt.Fprintf(&b, "%d. [%s](%s)", i+1, title, s.URL)
		if !s.PublishedDate.IsZero() {
			fmt.Fprintf(&b, " — %s", s.PublishedDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Section is one heading-delimited slice of a markdown document.
type Section struct {
	Title   string
	Content string
}

// Sections extracts the sections introduced by headings of exactly the
// given level (1-6). Content runs until the next heading of the same or a
// shallower level.
func Sections(markdown string, level int) []Section {
	if level < 1 || level > 6 {
		return nil
	}
	marker := strings.Repeat("#", level) + " "

	var sections []Section
	var current *Section
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasPrefix(trimmed, marker) {
			if current != nil {
				current.Content = strings.TrimSpace(current.Content)
				sections = append(sections, *current)
			}
			current = &Section{Title: strings.TrimSpace(strings.TrimPrefix(trimmed, marker))}
			continue
		}
		if current != nil {
			if isShallowerHeading(trimmed, level) {
				current.Content = strings.TrimSpace(current.Content)
				sections = append(sections, *current)
				current = nil
				continue
			}
			current.Content += line + "\n"
		}
	}
	if current != nil {
		current.Content = strings.TrimSpace(current.Content)
		sections = append(sections, *current)
	}
	return sections
}

// isShallowerHeading reports whether the line is a heading of a shallower
// (smaller) level than level.
func isShallowerHeading(line string, level int) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	return n < level && n < len(line) && line[n] == ' '
}
