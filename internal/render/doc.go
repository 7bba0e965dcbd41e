// Package render turns the assembled markup artifact into the final
// paginated output. The default implementation drives a headless
// Chrome instance over the DevTools protocol and prints the document
// to PDF with a running title header and page-number footer.
package render
