// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-10s  %-10s  %-6s\n",
		"Rank", "Title", "Provider", "Date", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 98))

	for i, r := range out.Results {
		title := r.Title
		if title == "" {
			title = r.URL
		}
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		date := ""
		if !r.PublishedDate.IsZero() {
			date = r.PublishedDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-10s  %-10s  %-6.1f\n",
			i+1, title, r.Provider, date, r.Score)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}
