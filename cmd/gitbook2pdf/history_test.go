package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pressbound/gitbook2pdf/internal/archive"
	"github.com/pressbound/gitbook2pdf/internal/model"
)

// TestHistoryCmd tests the history command.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("fails when no archive exists", func(t *testing.T) {
		t.Parallel()

		cmd := NewHistoryCmd()
		cmd.SetArgs([]string{"--archive-dir", t.TempDir()})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing archive")
		}
	})

	t.Run("lists recorded conversions", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a, err := archive.Open(dir, archive.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open archive: %v", err)
		}

		doc := &model.Document{
			TOC:   []model.TocEntry{{Title: "Intro", Href: "intro.html"}},
			Pages: []model.Page{{Title: "Intro", URL: "http://example.com/intro.html", Content: "<p>hi</p>"}},
		}
		if _, err := a.SaveConversion(context.Background(), doc, "http://example.com", "book.pdf", time.Now()); err != nil {
			t.Fatalf("failed to save conversion: %v", err)
		}
		if err := a.Close(); err != nil {
			t.Fatalf("failed to close archive: %v", err)
		}

		cmd := NewHistoryCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--archive-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "http://example.com") {
			t.Errorf("history output missing site: %q", out.String())
		}
	})
}
