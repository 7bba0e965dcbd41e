package model

import "fmt"

// Page is the extracted content of one TOC entry.
// Exactly one Page is created per deduplicated TOC entry that survives
// validation: a failed fetch produces a placeholder Page rather than a gap,
// so the final document always mirrors the structure of the TOC.
// Pages are owned by the crawler until handed to the assembler and are
// never mutated after creation.
type Page struct {
	// Title is the TOC-supplied title. The crawler never re-derives the
	// title from the page markup; the TOC is authoritative.
	Title string `json:"title"`

	// URL is the absolute URL the page was fetched from.
	URL string `json:"url"`

	// Content is the extracted primary content region as an HTML fragment.
	Content string `json:"content"`

	// Level is the TOC nesting level of the page.
	Level int `json:"level"`

	// Placeholder marks pages whose fetch or extraction failed.
	// The Content of a placeholder carries a human-readable diagnostic.
	Placeholder bool `json:"placeholder,omitempty"`
}

// NewPlaceholderPage creates a structurally valid Page for a TOC entry whose
// fetch or extraction failed. The placeholder content names the failing URL so
// the gap is visible in the final document.
func NewPlaceholderPage(entry TocEntry, pageURL string) Page {
	return Page{
		Title:       entry.Title,
		URL:         pageURL,
		Content:     fmt.Sprintf("<p>failed to fetch page content: %s</p>", pageURL),
		Level:       entry.Level,
		Placeholder: true,
	}
}

// Document is the final artifact of the crawl: the authoritative deduplicated
// TOC and the pages sorted into TOC order. It is the sole object crossing the
// boundary to the assembler and, in serialized form, to the renderer.
type Document struct {
	// TOC is the deduplicated table of contents in discovery order.
	TOC []TocEntry `json:"toc"`

	// Pages holds one Page per fetched TOC entry, in TOC order.
	// len(Pages) <= len(TOC): entries whose URL resolved to an already
	// fetched page produce no additional Page.
	Pages []Page `json:"pages"`
}

// PlaceholderCount returns the number of pages whose fetch failed.
func (d *Document) PlaceholderCount() int {
	n := 0
	for _, p := range d.Pages {
		if p.Placeholder {
			n++
		}
	}
	return n
}
