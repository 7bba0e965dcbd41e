// Package assemble serializes a crawled document into a single
// self-contained markup file ready for rendering: an embedded style
// block, a generated index linking into the document, and one anchored
// chapter section per page in TOC order, separated by page-break
// markers.
package assemble
