package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/pressbound/gitbook2pdf/internal/model"
)

// Info carries run-level facts about one conversion that the document
// itself does not hold.
type Info struct {
	// BaseURL is the crawl root.
	BaseURL string

	// OutputPath is where the rendered document was written.
	OutputPath string

	// StartedAt is when the conversion began.
	StartedAt time.Time

	// Duration is the total conversion time.
	Duration time.Duration
}

// Writer produces a Markdown summary of one conversion run.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation: type-safe tables and lists beat hand-built
// string concatenation for this kind of output.
type Writer struct{}

// New creates a report Writer.
func New() *Writer {
	return &Writer{}
}

// Write renders the conversion summary to out.
func (w *Writer) Write(out io.Writer, doc *model.Document, info Info) error {
	md := markdown.NewMarkdown(out)

	w.writeHeader(md, doc, info)
	w.writeContents(md, doc)
	w.writeFailures(md, doc)

	return md.Build()
}

// WriteFile renders the conversion summary to a file at path.
func (w *Writer) WriteFile(path string, doc *model.Document, info Info) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Double close is harmless

	if err := w.Write(f, doc, info); err != nil {
		return err
	}
	return f.Close()
}

// writeHeader writes the run summary table.
func (w *Writer) writeHeader(md *markdown.Markdown, doc *model.Document, info Info) {
	md.H1("Conversion Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + info.BaseURL + "`"},
			{"Output", "`" + info.OutputPath + "`"},
			{"Started", info.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", info.Duration.Round(time.Millisecond).String()},
			{"TOC entries", strconv.Itoa(len(doc.TOC))},
			{"Pages", strconv.Itoa(len(doc.Pages))},
			{"Failed pages", strconv.Itoa(doc.PlaceholderCount())},
		},
	})
	md.PlainText("")
}

// writeContents writes the fetched page listing in document order.
func (w *Writer) writeContents(md *markdown.Markdown, doc *model.Document) {
	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		status := "fetched"
		if p.Placeholder {
			status = "failed"
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Level),
			p.Title,
			"`" + p.URL + "`",
			status,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Level", "Title", "URL", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures lists failed pages separately so operators can retry
// or diagnose them without scanning the full page table.
func (w *Writer) writeFailures(md *markdown.Markdown, doc *model.Document) {
	if doc.PlaceholderCount() == 0 {
		return
	}

	md.H2("Failed Pages")
	md.PlainText("")
	for _, p := range doc.Pages {
		if p.Placeholder {
			md.BulletList(p.Title + ": " + p.URL)
		}
	}
	md.PlainText("")
}
