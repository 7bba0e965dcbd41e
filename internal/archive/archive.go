package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pressbound/gitbook2pdf/internal/model"
)

// dbFileName is the archive database file name inside the archive
// directory.
const dbFileName = "gitbook2pdf.db"

// Archive provides SQLite-based storage of past conversions. Each run
// records the crawl outcome and its per-page results, so repeated
// conversions of the same site can be compared over time.
//
// Design decision: one database file for all conversions rather than
// one per site. Cross-site history queries stay simple and there is
// only one file to back up.
type Archive struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Archive behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default archive options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an Archive under the given directory.
func Open(dir string, opts Options) (*Archive, error) {
	dbPath := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("archive not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check archive path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	// SQLite supports only one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &Archive{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := a.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the path of the archive database file.
func (a *Archive) Path() string {
	return a.dbPath
}

// createTables creates the archive schema if it doesn't exist.
func (a *Archive) createTables() error {
	schema := `
	-- One row per conversion run
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		output_path TEXT NOT NULL,
		toc_entries INTEGER NOT NULL,
		pages_fetched INTEGER NOT NULL,
		placeholders INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_base_url ON conversions(base_url);
	CREATE INDEX IF NOT EXISTS idx_conversions_finished ON conversions(finished_at);

	-- One row per page of a conversion
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversion_id INTEGER NOT NULL REFERENCES conversions(id),
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		level INTEGER NOT NULL,
		placeholder INTEGER NOT NULL,
		content_size INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_conversion ON pages(conversion_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := a.db.ExecContext(context.Background(), schema)
	return err
}

// ConversionRecord is a stored conversion run.
type ConversionRecord struct {
	ID           int64
	BaseURL      string
	OutputPath   string
	TocEntries   int
	PagesFetched int
	Placeholders int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// SaveConversion records a finished conversion and all its pages in
// one transaction, returning the conversion id.
func (a *Archive) SaveConversion(ctx context.Context, doc *model.Document, baseURL, outputPath string, startedAt time.Time) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO conversions (base_url, output_path, toc_entries, pages_fetched, placeholders, started_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		baseURL,
		outputPath,
		len(doc.TOC),
		len(doc.Pages),
		doc.PlaceholderCount(),
		startedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert conversion: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read conversion id: %w", err)
	}

	for _, p := range doc.Pages {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO pages (conversion_id, title, url, level, placeholder, content_size)
		VALUES (?, ?, ?, ?, ?, ?)`,
			id, p.Title, p.URL, p.Level, boolToInt(p.Placeholder), len(p.Content),
		); err != nil {
			return 0, fmt.Errorf("failed to insert page record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit conversion: %w", err)
	}
	return id, nil
}

// RecentConversions returns up to limit conversions, newest first.
func (a *Archive) RecentConversions(ctx context.Context, limit int) ([]ConversionRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
	SELECT id, base_url, output_path, toc_entries, pages_fetched, placeholders, started_at, finished_at
	FROM conversions
	ORDER BY finished_at DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Best effort cleanup

	var records []ConversionRecord
	for rows.Next() {
		var (
			rec      ConversionRecord
			started  string
			finished string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.BaseURL,
			&rec.OutputPath,
			&rec.TocEntries,
			&rec.PagesFetched,
			&rec.Placeholders,
			&started,
			&finished,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		rec.StartedAt = parseTimestamp(started)
		rec.FinishedAt = parseTimestamp(finished)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PageCount returns the number of page records stored for a conversion.
func (a *Archive) PageCount(ctx context.Context, conversionID int64) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pages WHERE conversion_id = ?", conversionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// parseTimestamp parses the timestamp formats SQLite may return.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
