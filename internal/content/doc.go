// Package content selects the primary content region of a fetched
// page and normalizes it for assembly.
//
// Extraction runs a fixed pipeline: image references are downloaded
// through the fetcher's image path and rewritten to local files,
// internal links are absolutized against the page's own URL,
// navigation chrome is stripped, and a single content region is
// chosen from a priority list of structural selectors. Headings that
// duplicate the page's TOC-supplied title are suppressed so the
// assembled document carries each chapter title exactly once; the
// comparison tolerates CJK numerals and chapter-prefix variants
// ("Chapter 3" matches "第三章").
package content
