// Package ledger persists which fingerprints have already been placed into
// the output tree, so a rerun against the same output skips work it has
// already done.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed placement ledger. It lives inside the output
// tree so the ledger travels with the organized files.
type Store struct {
	db   *sql.DB
	path string
}

// Placement records one fingerprint landing at a destination path.
type Placement struct {
	Fingerprint string
	RunID       string
	SourcePath  string
	DestPath    string
	Category    string
	PlacedAt    time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id           TEXT PRIMARY KEY,
    input_root   TEXT NOT NULL,
    started_at   TEXT NOT NULL,
    completed_at TEXT,
    files_placed INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS placements (
    fingerprint TEXT PRIMARY KEY,
    run_id      TEXT NOT NULL REFERENCES runs(id),
    source_path TEXT NOT NULL,
    dest_path   TEXT NOT NULL,
    category    TEXT NOT NULL,
    placed_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_placements_run ON placements(run_id);
`

// Open initializes or connects to the ledger database at path, creating the
// parent directory when needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize ledger schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun records the start of a run and returns its id.
func (s *Store) BeginRun(ctx context.Context, inputRoot string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, input_root, started_at) VALUES (?, ?, ?)`,
		id, inputRoot, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run finished and records how many files it placed.
func (s *Store) CompleteRun(ctx context.Context, runID string, filesPlaced int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := s.execWithRetry(ctx,
		`UPDATE runs SET completed_at = ?, files_placed = ? WHERE id = ?`,
		now, filesPlaced, runID,
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// Lookup returns the recorded placement for a fingerprint, if any.
func (s *Store) Lookup(ctx context.Context, fingerprint string) (*Placement, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, run_id, source_path, dest_path, category, placed_at
         FROM placements WHERE fingerprint = ?`,
		fingerprint,
	)

	var p Placement
	var placedAt string
	err := row.Scan(&p.Fingerprint, &p.RunID, &p.SourcePath, &p.DestPath, &p.Category, &placedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup placement: %w", err)
	}
	if t, parseErr := time.Parse(time.RFC3339Nano, placedAt); parseErr == nil {
		p.PlacedAt = t
	}
	return &p, true, nil
}

// RecordPlacement stores one placement. Re-recording a fingerprint replaces
// the previous row; the latest destination wins.
func (s *Store) RecordPlacement(ctx context.Context, p Placement) error {
	placedAt := p.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO placements (fingerprint, run_id, source_path, dest_path, category, placed_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(fingerprint) DO UPDATE SET
             run_id = excluded.run_id,
             source_path = excluded.source_path,
             dest_path = excluded.dest_path,
             category = excluded.category,
             placed_at = excluded.placed_at`,
		p.Fingerprint, p.RunID, p.SourcePath, p.DestPath, p.Category,
		placedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record placement: %w", err)
	}
	return nil
}

// PlacementCount returns the total number of recorded placements.
func (s *Store) PlacementCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM placements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count placements: %w", err)
	}
	return count, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
