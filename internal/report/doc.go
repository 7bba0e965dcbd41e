// Package report produces a Markdown summary of one conversion run:
// run facts, the fetched page listing in document order, and failed
// pages pulled out separately for diagnosis.
package report
