package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// pdfMargin is the page margin in inches, roughly one centimeter.
const pdfMargin = 0.4

// headerTemplate renders the document title as a running header on
// every page. Chrome substitutes the spans and cannot vary the header
// per chapter, so the per-section running heads of a typeset book are
// out of reach here. Inline styles are required because header and
// footer templates carry no document CSS.
const headerTemplate = `<div style="font-size: 8px; width: 100%; text-align: center;"><span class="title"></span></div>`

// footerTemplate renders the page number as a running footer.
const footerTemplate = `<div style="font-size: 8px; width: 100%; text-align: center;"><span class="pageNumber"></span></div>`

// Renderer turns an assembled markup file into a paginated output
// file. The core treats rendering as a black box: a written output
// file on success, an error otherwise.
type Renderer interface {
	Render(ctx context.Context, htmlPath, outputPath string) error
}

// ChromeRenderer renders through a headless Chrome instance driven
// over the DevTools protocol.
type ChromeRenderer struct {
	timeout time.Duration
	logger  *slog.Logger
}

// ChromeOption configures a ChromeRenderer.
type ChromeOption func(*ChromeRenderer)

// WithTimeout bounds a single render run, browser startup included.
func WithTimeout(d time.Duration) ChromeOption {
	return func(r *ChromeRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger used for render diagnostics.
func WithLogger(logger *slog.Logger) ChromeOption {
	return func(r *ChromeRenderer) {
		r.logger = logger
	}
}

// NewChrome creates a headless Chrome renderer.
func NewChrome(opts ...ChromeOption) *ChromeRenderer {
	r := &ChromeRenderer{
		timeout: 5 * time.Minute,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render loads htmlPath in a headless browser and prints it to a PDF
// at outputPath. The page is loaded from a file URL so its relative
// image references resolve against the working directory.
func (r *ChromeRenderer) Render(ctx context.Context, htmlPath, outputPath string) error {
	fileURL, err := toFileURL(htmlPath)
	if err != nil {
		return renderError(err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	r.logger.Info("rendering document", "source", htmlPath, "output", outputPath)

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate(fileURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(headerTemplate).
				WithFooterTemplate(footerTemplate).
				WithMarginTop(pdfMargin).
				WithMarginBottom(pdfMargin).
				WithMarginLeft(pdfMargin).
				WithMarginRight(pdfMargin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return renderError(err)
	}
	if len(pdf) == 0 {
		return fmt.Errorf("%w: empty document produced", ErrRenderFailed)
	}

	if err := os.WriteFile(outputPath, pdf, 0600); err != nil {
		return renderError(err)
	}

	r.logger.Info("document rendered", "output", outputPath, "bytes", len(pdf))
	return nil
}

// renderError marks err as a rendering failure while keeping the
// cause visible to errors.Is. An interrupt during rendering must
// still report as context.Canceled so the command exits with the
// interrupted status.
func renderError(err error) error {
	return fmt.Errorf("%w: %w", ErrRenderFailed, err)
}

// toFileURL converts a local path to a file URL the browser can load.
func toFileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
