// Package crawler orchestrates the crawl of one documentation site:
// TOC discovery with fallbacks, politeness-bounded concurrent page
// fetching, and content extraction, producing a model.Document ordered
// to match the discovered TOC.
//
// The TOC walk and deduplication run sequentially before any parallel
// work, establishing the authoritative order. The fetch phase fans out
// over a bounded worker pool with no ordering guarantee of its own;
// the post-phase sort by TOC position is the ordering guarantee. A
// single page failure degrades to a placeholder Page so the document
// keeps one Page per TOC entry; only a missing TOC, zero fetched
// pages, or cancellation abort the crawl.
package crawler
