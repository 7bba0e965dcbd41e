package assemble

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pressbound/gitbook2pdf/internal/content"
	"github.com/pressbound/gitbook2pdf/internal/model"
)

// FileName is the name of the intermediate markup artifact written to
// the working directory. Image references inside it are relative to
// that directory, so it must be rendered in place.
const FileName = "book.html"

// styleBlock is the embedded style of the intermediate document:
// responsive images, bordered full-width tables, monospace code
// blocks, and a page break before every top-level heading except the
// first.
const styleBlock = `body { font-family: Arial, sans-serif; line-height: 1.6; }
h1 { page-break-before: always; }
h1:first-of-type { page-break-before: avoid; }
img { max-width: 100%; height: auto; }
a { color: #4183C4; text-decoration: none; }
pre { background-color: #f8f8f8; border: 1px solid #ddd; padding: 10px; overflow-x: auto; }
code { background-color: #f8f8f8; padding: 2px 4px; }
table { border-collapse: collapse; width: 100%; }
table, th, td { border: 1px solid #ddd; padding: 8px; }
`

// sectionBreak separates consecutive page sections. It never follows
// the last page.
const sectionBreak = `<hr style="page-break-after: always;">`

// idStripPattern matches characters removed when deriving an element
// id from a title. Letters (any script), digits, underscores, and
// spaces survive; spaces then become underscores.
var idStripPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Assembler serializes a crawled document into one self-contained
// markup file: a generated index followed by one anchored section per
// page in TOC order.
type Assembler struct {
	logger *slog.Logger
}

// New creates an Assembler.
func New(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger}
}

// Assemble returns the combined document markup. Each page is wrapped
// in a chapter container keyed by its normalized title; a heading for
// the page is generated only when the page content does not already
// open with an equivalent one.
func (a *Assembler) Assemble(doc *model.Document) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("<title>GitBook PDF</title>\n")
	b.WriteString("<style>\n")
	b.WriteString(styleBlock)
	b.WriteString("</style>\n</head>\n<body>\n")

	a.writeIndex(&b, doc.TOC)

	for i, page := range doc.Pages {
		b.WriteString(fmt.Sprintf("<div class=\"chapter\" id=\"%s\">\n", makeID(page.Title)))

		if !hasSimilarHeading(page.Content, page.Title) {
			b.WriteString(fmt.Sprintf("<h1>%s</h1>\n", page.Title))
		}

		b.WriteString(page.Content)
		b.WriteString("\n</div>\n")

		if i < len(doc.Pages)-1 {
			b.WriteString(sectionBreak)
			b.WriteString("\n")
		}
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// WriteFile assembles the document and writes it into workDir,
// returning the full path of the written file.
func (a *Assembler) WriteFile(workDir string, doc *model.Document) (string, error) {
	path := filepath.Join(workDir, FileName)
	if err := os.WriteFile(path, []byte(a.Assemble(doc)), 0600); err != nil {
		return "", fmt.Errorf("failed to write assembled document: %w", err)
	}

	a.logger.Info("assembled document written", "path", path, "pages", len(doc.Pages))
	return path, nil
}

// writeIndex emits the generated table of contents: one anchor-linked
// line per entry, indented by nesting level.
func (a *Assembler) writeIndex(b *strings.Builder, entries []model.TocEntry) {
	b.WriteString("<h1>Contents</h1>\n<ul>\n")
	for _, e := range entries {
		indent := strings.Repeat("  ", e.Level)
		b.WriteString(fmt.Sprintf("%s<li><a href=\"#%s\">%s</a></li>\n", indent, makeID(e.Title), e.Title))
	}
	b.WriteString("</ul>\n")
}

// hasSimilarHeading reports whether the markup fragment opens with an
// h1 equivalent to title. Extraction suppresses duplicate headings
// already, so this guards the cases where suppression could not run,
// such as placeholder pages with hand-built content.
func hasSimilarHeading(fragment, title string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return false
	}

	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return false
	}
	return content.SimilarTitles(strings.TrimSpace(h1.Text()), title)
}

// makeID derives a stable element id from a title: punctuation is
// dropped, spaces become underscores, and the result is lower-cased.
func makeID(title string) string {
	id := idStripPattern.ReplaceAllString(title, "")
	id = strings.Join(strings.Fields(id), "_")
	return strings.ToLower(id)
}
