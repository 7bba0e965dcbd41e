// Package main provides the entry point for the gitbook2pdf CLI.
//
// gitbook2pdf crawls a GitBook-style documentation site and converts
// it into a single PDF file, preserving the table-of-contents
// structure and including images.
//
// Usage:
//
//	gitbook2pdf https://docs.example.com
//	gitbook2pdf -o book.pdf -w 5 https://docs.example.com
//
// See --help for all available options.
package main

// main is the entry point for gitbook2pdf.
func main() {
	Execute()
}
