package model

import "strings"

// TocEntry is a single entry in a site's table of contents.
// Entries are produced once during TOC discovery and are immutable afterwards;
// the crawler and the assembler both consume the same deduplicated sequence.
type TocEntry struct {
	// Title is the visible link text of the entry.
	Title string `json:"title"`

	// Href is the link target as found in the navigation markup.
	// It may be relative to the crawl base URL or absolute.
	Href string `json:"href"`

	// Level is the nesting depth of the entry within the navigation tree.
	// Zero means top level. The level drives index indentation and
	// page-break decisions downstream.
	Level int `json:"level"`
}

// Valid reports whether the entry carries both a title and a link target.
// Entries with an empty title or href are dropped before fetching so that
// the final document never contains anonymous or unreachable sections.
func (e TocEntry) Valid() bool {
	return strings.TrimSpace(e.Title) != "" && strings.TrimSpace(e.Href) != ""
}
