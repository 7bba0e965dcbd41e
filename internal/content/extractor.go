package content

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NoContentPlaceholder is returned when no content region can be
// selected from a page. It keeps the page structurally present in the
// assembled document.
const NoContentPlaceholder = "<p>no content found</p>"

// regionSelectors is the priority list for selecting the primary
// content region. First match wins; the document body is the final
// catch-all.
var regionSelectors = []string{
	"article",
	"main",
	"div.content",
	"div.article-content",
	"div.markdown-section",
	"div[role=main]",
	"body",
}

// chromeSelector matches whole-document navigation chrome removed
// before region selection.
const chromeSelector = "nav.summary, nav.book-summary, nav.table-of-contents, " +
	"div.summary, div.book-summary, div.table-of-contents"

// noiseClasses are class-name fragments that mark an in-region element
// as navigation or heading chrome. Matching is by substring so themed
// variants like "book-summary" or "page-header" are caught too.
var noiseClasses = []string{"summary", "book-summary", "table-of-contents", "header", "heading"}

// headingTags lists the heading elements subject to duplicate-title
// suppression.
var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true,
}

// ImageFetcher downloads one image and returns its path relative to
// the working directory. The fetch package's Fetcher satisfies it.
type ImageFetcher interface {
	FetchImage(ctx context.Context, absURL string) (string, error)
}

// Extractor selects and normalizes the primary content region of a
// fetched page.
type Extractor struct {
	images ImageFetcher
	logger *slog.Logger
}

// New creates a content extractor. images may be nil, in which case
// image references are left untouched.
func New(images ImageFetcher, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{images: images, logger: logger}
}

// Extract returns the page's primary content region as a markup
// fragment. The steps run in a fixed order: image references are
// downloaded and rewritten to local paths, internal links are
// absolutized against the page's own URL, navigation chrome is
// removed, one content region is selected by priority, and headings
// duplicating knownTitle are suppressed inside that region.
//
// Any single image or link failure degrades that one reference; only a
// missing content region yields the placeholder fragment.
func (e *Extractor) Extract(ctx context.Context, doc *goquery.Document, pageURL, knownTitle string) string {
	if doc == nil {
		return NoContentPlaceholder
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		e.logger.Warn("invalid page URL, links kept as-is", "url", pageURL, "error", err)
		base = nil
	}

	e.rewriteImages(ctx, doc, base)
	rewriteLinks(doc, base)
	doc.Find(chromeSelector).Remove()

	region := findRegion(doc)
	if region == nil {
		e.logger.Warn("no content region found", "url", pageURL)
		return NoContentPlaceholder
	}

	stripNoise(region, knownTitle)

	html, err := goquery.OuterHtml(region)
	if err != nil {
		e.logger.Warn("failed to serialize content region", "url", pageURL, "error", err)
		return NoContentPlaceholder
	}
	return html
}

// rewriteImages downloads every referenced image and points the
// reference at the local copy. A failed download leaves the original
// reference in place so the page still renders with a broken image
// rather than failing outright.
func (e *Extractor) rewriteImages(ctx context.Context, doc *goquery.Document, base *url.URL) {
	if e.images == nil {
		return
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}

		abs := resolveRef(base, src)
		local, err := e.images.FetchImage(ctx, abs)
		if err != nil {
			e.logger.Warn("image download failed", "url", abs, "error", err)
			return
		}
		img.SetAttr("src", local)
	})
}

// rewriteLinks absolutizes internal links against the page's own URL.
// Pages may live at different relative depths, so the crawl base is
// the wrong anchor here.
func rewriteLinks(doc *goquery.Document, base *url.URL) {
	if base == nil {
		return
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		if strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "http") ||
			strings.HasPrefix(href, "mailto:") {
			return
		}
		a.SetAttr("href", resolveRef(base, href))
	})
}

// findRegion returns the first matching content region, or nil.
func findRegion(doc *goquery.Document) *goquery.Selection {
	for _, sel := range regionSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// stripNoise removes navigation and heading chrome inside the selected
// region, plus any heading whose text duplicates the already-known
// page title. The assembler renders that title itself, so an in-page
// copy would appear twice.
func stripNoise(region *goquery.Selection, knownTitle string) {
	region.Find("nav, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if class, ok := s.Attr("class"); ok && class != "" {
			for _, noise := range noiseClasses {
				if strings.Contains(class, noise) {
					s.Remove()
					return
				}
			}
		}

		if node := s.Get(0); node != nil && headingTags[node.Data] {
			if knownTitle != "" && SimilarTitles(strings.TrimSpace(s.Text()), knownTitle) {
				s.Remove()
			}
		}
	})
}

// resolveRef resolves ref against base, returning ref unchanged when
// that is not possible.
func resolveRef(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
