package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// maxBodySize limits the size of response bodies to read.
// Documentation pages larger than this are almost certainly not pages.
const maxBodySize = 10 * 1024 * 1024 // 10MB

// Status is the outcome of a fetch attempt that did not fail.
//
// Design decision: "already visited" is an explicit status rather than a
// nil result or an error. A nil result is indistinguishable from a hard
// failure at the call site, and treating a dedup hit as an error would
// force callers to pattern-match error values for normal control flow.
type Status int

const (
	// StatusFetched means the page was fetched and parsed.
	StatusFetched Status = iota

	// StatusAlreadyVisited means the URL was already fetched in this
	// crawl; no network request was made.
	StatusAlreadyVisited
)

// Result is the outcome of a successful Fetch call.
type Result struct {
	// Status distinguishes a fresh fetch from a dedup hit.
	Status Status

	// URL is the resolved absolute URL of the request.
	URL string

	// Doc is the parsed document tree. Nil when Status is
	// StatusAlreadyVisited.
	Doc *goquery.Document
}

// Fetcher performs politeness-bounded HTTP fetches for one crawl.
// It owns the visited set: a URL is fetched at most once per crawl,
// regardless of whether the first attempt succeeded.
//
// Design decision: the politeness delay is enforced with a single shared
// rate.Limiter rather than a per-worker sleep after each request. The point
// of the delay is bounding the request rate seen by the target site; a
// shared limiter bounds it across all workers, which is strictly stronger.
type Fetcher struct {
	// base is the crawl root. Relative URLs resolve against it.
	base *url.URL

	// client is the HTTP client, configured with the forward proxy
	// when one is set.
	client *http.Client

	// limiter enforces the politeness delay before every network call.
	limiter *rate.Limiter

	// workDir is the working directory; downloaded images are stored in
	// its "images" subdirectory and referenced relative to workDir.
	workDir string

	userAgent    string
	headers      map[string]string
	proxyURL     *url.URL
	ignoreRobots bool
	logger       *slog.Logger

	// mu guards visited. Workers fetch concurrently and may discover
	// overlapping links.
	mu      sync.Mutex
	visited map[string]bool

	// robots caches the crawl root's robots.txt policy, loaded once.
	robots robotsPolicy
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithDelay sets the politeness delay applied between network requests.
// Zero disables the delay.
func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
}

// WithProxy routes all traffic, plain and secure, through the given
// forward proxy.
func WithProxy(proxyURL *url.URL) Option {
	return func(f *Fetcher) {
		f.proxyURL = proxyURL
	}
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra HTTP headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithIgnoreRobots disables robots.txt checks.
func WithIgnoreRobots(ignore bool) Option {
	return func(f *Fetcher) {
		f.ignoreRobots = ignore
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher rooted at baseURL with images stored under workDir.
// The images subdirectory is created immediately so concurrent downloads
// never race on its creation.
func New(baseURL, workDir string, opts ...Option) (*Fetcher, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	f := &Fetcher{
		base:      base,
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		workDir:   workDir,
		userAgent: "gitbook2pdf/1.0",
		visited:   make(map[string]bool),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	}
	if f.proxyURL != nil {
		transport.Proxy = http.ProxyURL(f.proxyURL)
	}
	f.client.Transport = transport

	if err := os.MkdirAll(filepath.Join(workDir, imageDirName), 0750); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	return f, nil
}

// BaseURL returns the crawl root URL.
func (f *Fetcher) BaseURL() *url.URL {
	return f.base
}

// Resolve resolves a possibly relative URL reference against the crawl root.
// Unparseable references are returned unchanged.
func (f *Fetcher) Resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return f.base.ResolveReference(u).String()
}

// Fetch performs a single politeness-bounded GET for the given URL.
// Relative URLs are resolved against the crawl root.
//
// The URL is inserted into the visited set on the first attempt, success or
// failure alike: a failed fetch is not retried within the same crawl, and a
// second request for the same page returns StatusAlreadyVisited without
// touching the network.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	abs := f.Resolve(rawURL)
	u, err := url.Parse(abs)
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: abs, Err: err}
	}

	norm := normalizeURL(u)

	f.mu.Lock()
	if f.visited[norm] {
		f.mu.Unlock()
		f.logger.Debug("skipping already visited URL", "url", abs)
		return &Result{Status: StatusAlreadyVisited, URL: abs}, nil
	}
	f.visited[norm] = true
	f.mu.Unlock()

	if !f.ignoreRobots && !f.allowedByRobots(ctx, u) {
		return nil, &Error{Kind: KindRobotsDenied, URL: abs}
	}

	body, err := f.get(ctx, abs)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, &Error{Kind: KindParse, URL: abs, Err: fmt.Errorf("empty response body")}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: abs, Err: err}
	}
	doc.Url = u

	f.logger.Debug("fetched page", "url", abs, "bytes", len(body))
	return &Result{Status: StatusFetched, URL: abs, Doc: doc}, nil
}

// get performs the rate-limited HTTP GET and returns the response body.
// Failures are classified into typed fetch errors.
func (f *Fetcher) get(ctx context.Context, absURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, absURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: absURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Kind: f.classifyTransportError(err), URL: absURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode == http.StatusNotFound {
		return nil, &Error{Kind: KindNotFound, URL: absURL}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind: KindNetwork,
			URL:  absURL,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: absURL, Err: err}
	}
	return body, nil
}

// classifyTransportError distinguishes proxy failures from generic network
// failures. Go's transport reports proxy CONNECT failures with a
// "proxyconnect" prefix; a dial failure while a proxy is configured also
// points at the proxy rather than the target.
func (f *Fetcher) classifyTransportError(err error) Kind {
	if f.proxyURL == nil {
		return KindNetwork
	}
	msg := err.Error()
	if strings.Contains(msg, "proxyconnect") || strings.Contains(msg, f.proxyURL.Host) {
		return KindProxy
	}
	return KindNetwork
}

// normalizeURL normalizes a URL for deduplication.
// Fragment changes never change content, scheme and host are
// case-insensitive, and an empty path equals "/".
func normalizeURL(u *url.URL) string {
	n := *u
	n.Fragment = ""
	n.Scheme = strings.ToLower(n.Scheme)
	n.Host = strings.ToLower(n.Host)
	if n.Path == "" {
		n.Path = "/"
	}
	return n.String()
}
