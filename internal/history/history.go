// Package history keeps past reports in a local SQLite file.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"github.com/dshills/leetgrade/internal/report"
)

// DefaultLimit is used by List when limit is not positive.
const DefaultLimit = 20

// timeLayout sorts lexicographically in UTC.
const timeLayout = "2006-01-02T15:04:05.000Z"

//go:embed sql/ddl.sql
var ddl embed.FS

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("report not found")

// Store is a single-user report history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history file at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history.Open: path not specified")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history.Open: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history.Open: %s: %w", path, err)
	}
	// One writer; extra connections only contend for the file lock.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history.Open: %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, p := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	b, err := ddl.ReadFile("sql/ddl.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(b)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a report. Saving the same ID twice replaces the earlier row.
func (s *Store) Save(ctx context.Context, r *report.Report) error {
	if r.ID == "" {
		return errors.New("history.Save: report has no ID")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("history.Save: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analysis (id, created_at, logic, efficiency, readability, overall, rating, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Time.UTC().Format(timeLayout),
		r.Logic, r.Efficiency, r.Readability,
		r.Summary.Overall, string(r.Summary.Rating), string(data),
	)
	if err != nil {
		return fmt.Errorf("history.Save: %w", err)
	}
	return nil
}

// List returns up to limit reports, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*report.Report, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT report FROM analysis ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history.List: %w", err)
	}
	defer rows.Close()

	var out []*report.Report
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("history.List: %w", err)
		}
		r, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("history.List: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history.List: %w", err)
	}
	return out, nil
}

// Get returns the report with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*report.Report, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM analysis WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history.Get: %w", err)
	}
	return decode(data)
}

func decode(data string) (*report.Report, error) {
	var r report.Report
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
