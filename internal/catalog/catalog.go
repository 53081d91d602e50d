package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nguyentantai21042004/highlight-flow/internal/segment"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL DEFAULT '',
	source_path TEXT NOT NULL,
	output_path TEXT NOT NULL,
	total_duration REAL NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_segments (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	ord INTEGER NOT NULL,
	start_sec REAL NOT NULL,
	end_sec REAL NOT NULL,
	score REAL NOT NULL,
	caption TEXT NOT NULL,
	PRIMARY KEY (run_id, ord)
);
`

// Run is one recorded pipeline execution.
type Run struct {
	ID            int64
	Query         string
	SourcePath    string
	OutputPath    string
	TotalDuration float64
	CreatedAt     time.Time
}

// Catalog persists run history in a local SQLite database.
type Catalog struct {
	db *sql.DB
}

// Open creates or opens the catalog database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record stores a completed run and its segments.
func (c *Catalog) Record(ctx context.Context, query, sourcePath, outputPath string, totalDuration float64, segments []segment.Selected) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (query, source_path, output_path, total_duration, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, query, sourcePath, outputPath, totalDuration, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, s := range segments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_segments (run_id, ord, start_sec, end_sec, score, caption)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, s.Order, s.Start, s.End, s.Score, s.Caption); err != nil {
			return 0, fmt.Errorf("insert segment %d: %w", s.Order, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (c *Catalog) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, query, source_path, output_path, total_duration, created_at
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Query, &r.SourcePath, &r.OutputPath, &r.TotalDuration, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Segments returns the recorded segments of a run in playback order.
func (c *Catalog) Segments(ctx context.Context, runID int64) ([]segment.Selected, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT ord, start_sec, end_sec, score, caption
		FROM run_segments WHERE run_id = ? ORDER BY ord
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []segment.Selected
	for rows.Next() {
		var s segment.Selected
		if err := rows.Scan(&s.Order, &s.Start, &s.End, &s.Score, &s.Caption); err != nil {
			return nil, err
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}
