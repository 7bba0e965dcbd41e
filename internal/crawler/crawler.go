package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/pressbound/gitbook2pdf/internal/content"
	"github.com/pressbound/gitbook2pdf/internal/fetch"
	"github.com/pressbound/gitbook2pdf/internal/model"
	"github.com/pressbound/gitbook2pdf/internal/toc"
)

// summaryPaths lists conventional summary page locations tried, in
// order, when the base page carries no navigation markup.
var summaryPaths = []string{"SUMMARY.md", "summary.html", "toc.html"}

// state tracks crawl progress for diagnostics.
type state int

const (
	stateInit state = iota
	stateTOCDiscovered
	stateFetching
	stateAssembled
	stateFailed
)

// String returns the state name for logging.
func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateTOCDiscovered:
		return "toc_discovered"
	case stateFetching:
		return "fetching"
	case stateAssembled:
		return "assembled"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Crawler orchestrates TOC discovery, concurrent page fetching, and
// content extraction for one documentation site.
type Crawler struct {
	fetcher *fetch.Fetcher
	toc     *toc.Extractor
	content *content.Extractor
	workers int
	logger  *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithWorkers sets the worker pool width. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *Crawler) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger used for crawl diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler around the given fetcher. The fetcher also
// serves as the image-download path for content extraction, so images
// share the crawl's politeness and proxy policy.
func New(fetcher *fetch.Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher: fetcher,
		workers: 3,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.toc = toc.New(c.logger)
	c.content = content.New(fetcher, c.logger)
	return c
}

// Run crawls the site rooted at the fetcher's base URL and returns the
// assembled document. A failure to discover any TOC or to fetch any
// page is fatal; a failure on a single page produces a placeholder
// Page so the document keeps one Page per TOC entry.
func (c *Crawler) Run(ctx context.Context) (*model.Document, error) {
	c.logger.Info("starting crawl", "base_url", c.fetcher.BaseURL().String(), "state", stateInit)

	res, err := c.fetcher.Fetch(ctx, c.fetcher.BaseURL().String())
	if err != nil {
		c.logger.Error("base page fetch failed", "error", err, "state", stateFailed)
		return nil, fmt.Errorf("failed to fetch base page: %w", err)
	}

	entries, err := c.discoverTOC(ctx, res.Doc)
	if err != nil {
		c.logger.Error("toc discovery failed", "error", err, "state", stateFailed)
		return nil, err
	}

	entries = c.dedupeEntries(entries)
	if len(entries) == 0 {
		c.logger.Error("all toc entries invalid or duplicate", "state", stateFailed)
		return nil, ErrNoTOC
	}
	c.logger.Info("toc discovered", "entries", len(entries), "state", stateTOCDiscovered)

	pages, err := c.fetchPages(ctx, entries)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{TOC: entries, Pages: pages}
	if len(doc.Pages) == 0 || doc.PlaceholderCount() == len(doc.Pages) {
		c.logger.Error("every page fetch failed", "state", stateFailed)
		return nil, ErrNoPages
	}

	c.logger.Info("crawl complete",
		"pages", len(doc.Pages),
		"placeholders", doc.PlaceholderCount(),
		"state", stateAssembled,
	)
	return doc, nil
}

// discoverTOC runs the TOC fallback chain: navigation markup on the
// base page, then conventional summary pages, then every qualifying
// link on the base page as a flat TOC.
func (c *Crawler) discoverTOC(ctx context.Context, baseDoc *goquery.Document) ([]model.TocEntry, error) {
	entries := c.toc.Extract(baseDoc)
	if len(entries) > 0 {
		return entries, nil
	}

	c.logger.Warn("no navigation markup on base page, trying summary pages")
	for _, p := range summaryPaths {
		res, err := c.fetcher.Fetch(ctx, p)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			c.logger.Debug("summary page not available", "path", p, "error", err)
			continue
		}
		if res.Status != fetch.StatusFetched {
			continue
		}

		if entries = c.toc.Extract(res.Doc); len(entries) > 0 {
			c.logger.Info("toc extracted from summary page", "path", p)
			return entries, nil
		}
	}

	c.logger.Warn("no summary page found, building flat toc from base page links")
	if entries = c.toc.FlatEntries(baseDoc); len(entries) > 0 {
		return entries, nil
	}

	return nil, ErrNoTOC
}

// dedupeEntries drops entries with empty titles or hrefs and
// deduplicates by trimmed title and by resolved absolute URL, first
// occurrence winning. The result is the authoritative TOC used for
// both fetching and final ordering.
func (c *Crawler) dedupeEntries(entries []model.TocEntry) []model.TocEntry {
	seenTitles := make(map[string]bool)
	seenURLs := make(map[string]bool)

	deduped := make([]model.TocEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Valid() {
			continue
		}

		title := strings.TrimSpace(e.Title)
		pageURL := c.fetcher.Resolve(e.Href)
		if seenTitles[title] || seenURLs[pageURL] {
			continue
		}
		seenTitles[title] = true
		seenURLs[pageURL] = true
		deduped = append(deduped, e)
	}
	return deduped
}

// fetchPages fans one task per TOC entry out to a bounded pool, then
// restores TOC order. Worker completion order carries no meaning; the
// final sort is the ordering guarantee.
func (c *Crawler) fetchPages(ctx context.Context, entries []model.TocEntry) ([]model.Page, error) {
	c.logger.Info("fetching pages", "entries", len(entries), "workers", c.workers, "state", stateFetching)

	var (
		mu    sync.Mutex
		pages []model.Page
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, entry := range entries {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			page, ok, err := c.fetchPage(ctx, entry)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			mu.Lock()
			pages = append(pages, page)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.sortPages(pages, entries)
	return pages, nil
}

// fetchPage fetches one TOC entry and extracts its content. A fetch
// failure yields a placeholder Page rather than an error; the second
// return is false when the entry's URL was already fetched by another
// entry and no Page should be emitted. Only context cancellation
// propagates as an error.
func (c *Crawler) fetchPage(ctx context.Context, entry model.TocEntry) (model.Page, bool, error) {
	pageURL := c.fetcher.Resolve(entry.Href)
	c.logger.Info("fetching page", "title", entry.Title, "url", pageURL)

	res, err := c.fetcher.Fetch(ctx, entry.Href)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.Page{}, false, err
		}
		c.logger.Warn("page fetch failed", "url", pageURL, "error", err)
		return model.NewPlaceholderPage(entry, pageURL), true, nil
	}

	if res.Status == fetch.StatusAlreadyVisited {
		c.logger.Debug("page already fetched, skipping", "url", pageURL)
		return model.Page{}, false, nil
	}

	// The TOC-supplied title is authoritative: content extraction
	// suppresses in-page headings that duplicate it.
	return model.Page{
		Title:   strings.TrimSpace(entry.Title),
		URL:     res.URL,
		Content: c.content.Extract(ctx, res.Doc, res.URL, entry.Title),
		Level:   entry.Level,
	}, true, nil
}

// sortPages orders pages by their URL's position in the deduplicated
// TOC. Pages whose URL matches no entry sort last, stably.
func (c *Crawler) sortPages(pages []model.Page, entries []model.TocEntry) {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[c.fetcher.Resolve(e.Href)] = i
	}

	position := func(p model.Page) int {
		if i, ok := index[p.URL]; ok {
			return i
		}
		return len(entries)
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return position(pages[i]) < position(pages[j])
	})
}
