package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// newTestFetcher creates a Fetcher pointed at the test server with no
// politeness delay and robots checks disabled unless stated otherwise.
func newTestFetcher(t *testing.T, baseURL string, opts ...Option) *Fetcher {
	t.Helper()

	opts = append([]Option{WithDelay(0), WithIgnoreRobots(true)}, opts...)
	f, err := New(baseURL, t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	return f
}

// TestFetch tests basic page fetching.
func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("fetches and parses a page", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html><head><title>Hello</title></head><body><p>hi</p></body></html>`))
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		res, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != StatusFetched {
			t.Errorf("expected StatusFetched, got %v", res.Status)
		}
		if got := res.Doc.Find("title").Text(); got != "Hello" {
			t.Errorf("expected title 'Hello', got %q", got)
		}
	})

	t.Run("resolves relative URLs against the base", func(t *testing.T) {
		t.Parallel()

		var gotPath atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath.Store(r.URL.Path)
			_, _ = w.Write([]byte(`<html><body>ok</body></html>`))
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		if _, err := f.Fetch(context.Background(), "chapter1.html"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := gotPath.Load(); got != "/chapter1.html" {
			t.Errorf("expected request for /chapter1.html, got %v", got)
		}
	})

	t.Run("second fetch of same URL is a dedup hit", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			_, _ = w.Write([]byte(`<html><body>ok</body></html>`))
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		ctx := context.Background()

		if _, err := f.Fetch(ctx, srv.URL+"/page.html"); err != nil {
			t.Fatalf("first fetch failed: %v", err)
		}
		res, err := f.Fetch(ctx, srv.URL+"/page.html#section")
		if err != nil {
			t.Fatalf("second fetch failed: %v", err)
		}
		if res.Status != StatusAlreadyVisited {
			t.Errorf("expected StatusAlreadyVisited, got %v", res.Status)
		}
		if res.Doc != nil {
			t.Error("already-visited result should carry no document")
		}
		if got := requests.Load(); got != 1 {
			t.Errorf("expected exactly 1 network request, got %d", got)
		}
	})

	t.Run("failed fetch is not retried", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		ctx := context.Background()

		if _, err := f.Fetch(ctx, srv.URL+"/broken.html"); err == nil {
			t.Fatal("expected error for 500 response")
		}
		res, err := f.Fetch(ctx, srv.URL+"/broken.html")
		if err != nil {
			t.Fatalf("expected dedup hit after failure, got error: %v", err)
		}
		if res.Status != StatusAlreadyVisited {
			t.Errorf("expected StatusAlreadyVisited after failed first attempt, got %v", res.Status)
		}
		if got := requests.Load(); got != 1 {
			t.Errorf("expected exactly 1 network request, got %d", got)
		}
	})
}

// TestFetchErrorKinds tests failure classification.
func TestFetchErrorKinds(t *testing.T) {
	t.Parallel()

	t.Run("404 is KindNotFound", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		_, err := f.Fetch(context.Background(), srv.URL+"/missing.html")
		if !IsKind(err, KindNotFound) {
			t.Errorf("expected KindNotFound, got %v", err)
		}
	})

	t.Run("empty body is KindParse", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		_, err := f.Fetch(context.Background(), srv.URL+"/empty.html")
		if !IsKind(err, KindParse) {
			t.Errorf("expected KindParse, got %v", err)
		}
	})

	t.Run("unreachable host is KindNetwork", func(t *testing.T) {
		t.Parallel()

		// Reserved TEST-NET address, never routable.
		f := newTestFetcher(t, "http://192.0.2.1:1")
		_, err := f.Fetch(context.Background(), "http://192.0.2.1:1/page.html")
		if !IsKind(err, KindNetwork) {
			t.Errorf("expected KindNetwork, got %v", err)
		}
	})

	t.Run("unreachable proxy is KindProxy", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer srv.Close()

		proxyURL, err := url.Parse("http://192.0.2.1:1")
		if err != nil {
			t.Fatalf("failed to parse proxy URL: %v", err)
		}

		f := newTestFetcher(t, srv.URL, WithProxy(proxyURL))
		_, err = f.Fetch(context.Background(), srv.URL+"/page.html")
		if !IsKind(err, KindProxy) {
			t.Errorf("expected KindProxy, got %v", err)
		}
	})
}

// TestRobots tests robots.txt enforcement.
func TestRobots(t *testing.T) {
	t.Parallel()

	t.Run("disallowed path is denied", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
		})
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html><body>ok</body></html>"))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		f, err := New(srv.URL, t.TempDir(), WithDelay(0))
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		ctx := context.Background()
		if _, err := f.Fetch(ctx, srv.URL+"/public/page.html"); err != nil {
			t.Errorf("allowed path should fetch, got %v", err)
		}
		_, err = f.Fetch(ctx, srv.URL+"/private/page.html")
		if !IsKind(err, KindRobotsDenied) {
			t.Errorf("expected KindRobotsDenied, got %v", err)
		}
	})

	t.Run("missing robots.txt allows everything", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/robots.txt" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte("<html><body>ok</body></html>"))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		f, err := New(srv.URL, t.TempDir(), WithDelay(0))
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}
		if _, err := f.Fetch(context.Background(), srv.URL+"/page.html"); err != nil {
			t.Errorf("expected fetch to succeed without robots.txt, got %v", err)
		}
	})
}

// TestFetchImage tests image downloading into the working directory.
func TestFetchImage(t *testing.T) {
	t.Parallel()

	t.Run("downloads and stores image", func(t *testing.T) {
		t.Parallel()

		png := []byte{0x89, 'P', 'N', 'G'}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(png)
		}))
		defer srv.Close()

		workDir := t.TempDir()
		f, err := New(srv.URL, workDir, WithDelay(0), WithIgnoreRobots(true))
		if err != nil {
			t.Fatalf("failed to create fetcher: %v", err)
		}

		rel, err := f.FetchImage(context.Background(), srv.URL+"/assets/diagram.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rel != filepath.ToSlash(filepath.Join("images", "diagram.png")) {
			t.Errorf("expected images/diagram.png, got %q", rel)
		}

		data, err := os.ReadFile(filepath.Join(workDir, "images", "diagram.png"))
		if err != nil {
			t.Fatalf("image file not written: %v", err)
		}
		if string(data) != string(png) {
			t.Error("stored image does not match response body")
		}
	})

	t.Run("cached image skips the network", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			_, _ = w.Write([]byte("img"))
		}))
		defer srv.Close()

		f := newTestFetcher(t, srv.URL)
		ctx := context.Background()

		if _, err := f.FetchImage(ctx, srv.URL+"/logo.png"); err != nil {
			t.Fatalf("first download failed: %v", err)
		}
		if _, err := f.FetchImage(ctx, srv.URL+"/logo.png"); err != nil {
			t.Fatalf("second download failed: %v", err)
		}
		if got := requests.Load(); got != 1 {
			t.Errorf("expected 1 network request, got %d", got)
		}
	})

	t.Run("synthesizes a name for extension-less URLs", func(t *testing.T) {
		t.Parallel()

		u, err := url.Parse("https://cdn.example.com/")
		if err != nil {
			t.Fatalf("failed to parse URL: %v", err)
		}
		name := imageFilename(u)
		if name == "" || name == "." || name == "/" {
			t.Errorf("expected synthetic filename, got %q", name)
		}
	})
}

// TestNormalizeURL tests URL normalization for the visited set.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{name: "fragment ignored", a: "http://e.com/p", b: "http://e.com/p#x", same: true},
		{name: "host case ignored", a: "http://E.COM/p", b: "http://e.com/p", same: true},
		{name: "empty path equals slash", a: "http://e.com", b: "http://e.com/", same: true},
		{name: "different paths differ", a: "http://e.com/a", b: "http://e.com/b", same: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ua, err := url.Parse(tt.a)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", tt.a, err)
			}
			ub, err := url.Parse(tt.b)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", tt.b, err)
			}

			if got := normalizeURL(ua) == normalizeURL(ub); got != tt.same {
				t.Errorf("normalizeURL(%q) == normalizeURL(%q): got %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}
