// Package toc discovers a site's table of contents from navigation markup.
//
// Documentation sites mark up their navigation inconsistently: a semantic
// <nav> element, a GitBook-style "summary" container, or nothing at all.
// The extractor tries a fixed priority list of containers and reports an
// empty result rather than an error when none yields entries; the crawler
// owns the fallback strategy (conventional summary pages, then a flat list
// of every qualifying link).
//
// There is deliberately exactly one link-collection routine shared by the
// navigation-based and flat extraction paths, so both apply identical
// qualification and dedup rules.
package toc
