package crawler

import "errors"

var (
	// ErrNoTOC is returned when no table of contents can be discovered
	// from the base page, the conventional summary pages, or the
	// flat-link fallback.
	ErrNoTOC = errors.New("no table of contents could be discovered")

	// ErrNoPages is returned when a TOC was discovered but every page
	// fetch failed.
	ErrNoPages = errors.New("no pages could be fetched")
)
