package toc

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pressbound/gitbook2pdf/internal/model"
)

// navSelectors are tried in order to locate the navigation container.
// A semantic <nav> element wins over the GitBook-style summary containers.
var navSelectors = []string{"nav", "div.summary", "ul.summary"}

// skipPrefixes disqualify a link target from TOC membership: fragments,
// external absolute links, and non-navigational schemes.
var skipPrefixes = []string{"#", "http", "javascript:", "mailto:"}

// Extractor derives an ordered, leveled table of contents from a page's
// navigation markup.
type Extractor struct {
	logger *slog.Logger
}

// New creates a TOC extractor.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns the TOC entries found in the document's navigation
// container, in document order. It returns an empty slice, never an error:
// absence of a TOC is a normal condition the crawler handles with
// fallback strategies.
//
// Duplicate hrefs keep their first occurrence. The level of each entry is
// the count of list and list-item ancestors between the link and the
// navigation root, which yields nesting depth for indentation and
// page-break decisions downstream.
func (e *Extractor) Extract(doc *goquery.Document) []model.TocEntry {
	if doc == nil {
		return nil
	}

	nav := findNav(doc)
	if nav == nil {
		e.logger.Debug("no navigation container found")
		return nil
	}

	entries := collectEntries(nav.Find("a"), nav.Get(0))
	if len(entries) == 0 {
		e.logger.Debug("navigation container yielded no entries")
	}
	return entries
}

// FlatEntries returns every qualifying link in the document as a flat
// (level 0) TOC. This is the crawler's last-resort fallback when neither
// the base page nor any conventional summary page carries navigation
// markup.
func (e *Extractor) FlatEntries(doc *goquery.Document) []model.TocEntry {
	if doc == nil {
		return nil
	}
	return collectEntries(doc.Find("a"), nil)
}

// findNav returns the first matching navigation container, or nil.
func findNav(doc *goquery.Document) *goquery.Selection {
	for _, sel := range navSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// collectEntries builds TOC entries from the given link selection.
// root, when non-nil, bounds the ancestor walk for level computation;
// a nil root produces flat level-0 entries.
func collectEntries(links *goquery.Selection, root *html.Node) []model.TocEntry {
	var entries []model.TocEntry
	seen := make(map[string]bool)

	links.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !qualifies(href) {
			return
		}

		title := strings.TrimSpace(a.Text())
		if title == "" || seen[href] {
			return
		}
		seen[href] = true

		level := 0
		if root != nil {
			level = nestingLevel(a.Get(0), root)
		}

		entries = append(entries, model.TocEntry{
			Title: title,
			Href:  href,
			Level: level,
		})
	})

	return entries
}

// qualifies reports whether a raw href is a candidate TOC target.
func qualifies(href string) bool {
	if strings.TrimSpace(href) == "" {
		return false
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(href, prefix) {
			return false
		}
	}
	return true
}

// nestingLevel counts list and list-item ancestors of the link, walking up
// to but not including the navigation root.
func nestingLevel(node, root *html.Node) int {
	level := 0
	for p := node.Parent; p != nil && p != root; p = p.Parent {
		if p.Type == html.ElementNode && (p.Data == "li" || p.Data == "ul") {
			level++
		}
	}
	return level
}
