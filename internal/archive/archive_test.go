package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressbound/gitbook2pdf/internal/model"
)

func testDocument() *model.Document {
	return &model.Document{
		TOC: []model.TocEntry{
			{Title: "Intro", Href: "intro.html", Level: 0},
			{Title: "Usage", Href: "usage.html", Level: 1},
		},
		Pages: []model.Page{
			{Title: "Intro", URL: "http://example.com/intro.html", Content: "<p>hello</p>", Level: 0},
			{Title: "Usage", URL: "http://example.com/usage.html", Content: "<p>failed to fetch page content: http://example.com/usage.html</p>", Level: 1, Placeholder: true},
		},
	}
}

// TestOpen tests archive opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "newdir", "subdir")
		a, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open archive: %v", err)
		}
		defer a.Close()

		if _, err := os.Stat(filepath.Join(dir, dbFileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("missing database without create fails", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

// TestSaveConversion tests recording a conversion run.
func TestSaveConversion(t *testing.T) {
	t.Parallel()

	a, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	started := time.Now().Add(-time.Minute)

	id, err := a.SaveConversion(ctx, testDocument(), "http://example.com", "out.pdf", started)
	if err != nil {
		t.Fatalf("failed to save conversion: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive conversion id, got %d", id)
	}

	n, err := a.PageCount(ctx, id)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 page records, got %d", n)
	}

	records, err := a.RecentConversions(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list conversions: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 conversion, got %d", len(records))
	}

	rec := records[0]
	if rec.BaseURL != "http://example.com" {
		t.Errorf("unexpected base URL %q", rec.BaseURL)
	}
	if rec.TocEntries != 2 || rec.PagesFetched != 2 || rec.Placeholders != 1 {
		t.Errorf("unexpected counts: %+v", rec)
	}
	if rec.StartedAt.IsZero() {
		t.Error("started timestamp not recorded")
	}
}

// TestRecentConversions tests ordering of the history listing.
func TestRecentConversions(t *testing.T) {
	t.Parallel()

	a, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	for _, site := range []string{"http://first.example.com", "http://second.example.com"} {
		if _, err := a.SaveConversion(ctx, testDocument(), site, "out.pdf", time.Now()); err != nil {
			t.Fatalf("failed to save conversion: %v", err)
		}
	}

	records, err := a.RecentConversions(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list conversions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 conversions, got %d", len(records))
	}
	if records[0].BaseURL != "http://second.example.com" {
		t.Errorf("expected newest first, got %q", records[0].BaseURL)
	}
}
