// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes a response as a human-readable table to w.
func FormatTable(resp *Response, w io.Writer) {
	fmt.Fprintf(w, "intent: %s (%s)\n", resp.Intent.Kind, resp.Intent.Describe())
	if resp.Degraded {
		fmt.Fprintln(w, "note: results produced on a degraded path")
	}

	if resp.NoMatch {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-56s  %-20s  %-4s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Match")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	base := (resp.Page - 1) * resp.PageSize
	for i, r := range resp.Results {
		title := truncate(r.Article.Title, 56)
		year := ""
		if r.Article.HasYear() {
			year = fmt.Sprintf("%d", r.Article.Year)
		}
		fmt.Fprintf(w, "%-4d  %-56s  %-20s  %-4s  %-6.2f  %s\n",
			base+i+1, title, formatAuthors(r.Article.Authors), year, r.Final, r.Explanation)
	}

	fmt.Fprintf(w, "\n%d results", resp.Total)
	if resp.Total > resp.PageSize {
		fmt.Fprintf(w, " (page %d, %d per page)", resp.Page, resp.PageSize)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the full response as indented JSON to w.
func FormatJSON(resp *Response, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
