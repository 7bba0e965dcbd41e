// Package model defines the core data structures used throughout gitbook2pdf.
//
// This package contains the following main types:
//   - TocEntry: A titled, leveled link discovered in site navigation
//   - Page: The extracted content of one TOC entry
//   - Document: The deduplicated TOC plus its pages in TOC order
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, assemble, report, archive) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for archive storage and
// debugging output.
package model
