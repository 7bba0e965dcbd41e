package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the behavior users of similar site-to-PDF tools expect:
// conservative politeness, a small worker pool, and browser-like output names.
const (
	// DefaultDelay is the politeness delay applied after each network
	// request. One second is conservative and respectful of documentation
	// hosts, which are often small static-site deployments.
	DefaultDelay = 1 * time.Second

	// DefaultWorkers is the width of the page-fetch worker pool.
	// Three concurrent fetches keeps the request rate low while still
	// overlapping network latency across pages.
	DefaultWorkers = 3

	// DefaultTimeout is the per-request HTTP timeout. Documentation pages
	// are small; anything slower than 30 seconds is effectively down.
	DefaultTimeout = 30 * time.Second

	// DefaultOutput is the default PDF output path.
	DefaultOutput = "gitbook.pdf"

	// DefaultUserAgent identifies gitbook2pdf in HTTP requests.
	// A descriptive User-Agent lets site operators identify the traffic.
	DefaultUserAgent = "gitbook2pdf/1.0 (+https://github.com/pressbound/gitbook2pdf)"

	// DefaultRenderTimeout bounds the PDF rendering step. Large books with
	// many images can take a while to lay out.
	DefaultRenderTimeout = 5 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "gitbook2pdf"
)

// Config holds all configuration options for a single conversion run.
// It is populated from CLI flags and the optional YAML config file, then
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// BaseURL is the root URL of the documentation site to crawl.
	BaseURL string

	// OutputPath is where the final PDF is written.
	OutputPath string

	// Delay is the politeness delay between network requests.
	Delay time.Duration

	// WorkDir is the working directory for intermediate artifacts
	// (assembled HTML, downloaded images). Empty means a fresh temporary
	// directory is created for the run.
	WorkDir string

	// Workers is the width of the bounded worker pool for page fetches.
	Workers int

	// Verbose enables debug-level log output.
	Verbose bool

	// KeepTemp retains the working directory after a successful run.
	KeepTemp bool

	// ProxyURL is an optional forward proxy applied to both plain and
	// secure traffic. Empty means direct connections.
	ProxyURL string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// IgnoreRobots disables robots.txt checks during the crawl.
	IgnoreRobots bool

	// ReportPath, when set, writes a Markdown crawl summary to this path.
	ReportPath string

	// NoArchive disables the SQLite crawl archive.
	NoArchive bool

	// ArchiveDir is the directory for the crawl archive database.
	// Defaults to the XDG data directory for the application.
	ArchiveDir string

	// ConfigFilePath is the path to the YAML configuration file.
	// Empty means search the default locations.
	ConfigFilePath string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RenderTimeout bounds the PDF rendering step.
	RenderTimeout time.Duration

	// Sites holds per-host overrides loaded from the config file.
	Sites *File
}

// NewConfig creates a new Config with default values.
// Users override specific values after creation from flags or file.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (delay, workers, timeout).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputPath:    DefaultOutput,
		Delay:         DefaultDelay,
		Workers:       DefaultWorkers,
		Timeout:       DefaultTimeout,
		RenderTimeout: DefaultRenderTimeout,
		UserAgent:     DefaultUserAgent,
		ArchiveDir:    XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for gitbook2pdf.
// On Linux: ~/.local/share/gitbook2pdf
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for gitbook2pdf.
// On Linux: ~/.config/gitbook2pdf
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate once after CLI parsing, before any network
// activity, to fail fast with a clear message. The first error found is
// returned because fixing one often makes the others irrelevant.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrNoBaseURL
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Workers < 1 {
		return ErrInvalidWorkers
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ProxyURL != "" {
		p, err := url.Parse(c.ProxyURL)
		if err != nil || p.Scheme == "" || p.Host == "" {
			return ErrInvalidProxyURL
		}
	}

	if strings.TrimSpace(c.OutputPath) == "" {
		return ErrNoOutputPath
	}

	return nil
}
