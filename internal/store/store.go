// Package store keeps a SQLite history of scan runs and their matches.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/phonescan/internal/models"
	"github.com/harrison/phonescan/internal/phone"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RunSummary is one row of the run history.
type RunSummary struct {
	ID          string
	Engine      string
	StartedAt   time.Time
	Duration    time.Duration
	FileCount   int
	MatchCount  int
	FailedCount int
}

// NumberHit is one place a number was seen.
type NumberHit struct {
	RunID     string
	StartedAt time.Time
	Path      string
	Offset    int
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// execWithRetry retries "database is locked" failures with exponential backoff.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a run with all of its files and matches in one transaction.
func (s *Store) RecordRun(ctx context.Context, run *models.ScanRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO scan_runs
		(id, engine, started_at, duration_ms, file_count, match_count, failed_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Engine,
		run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(),
		len(run.Files),
		run.TotalMatches,
		run.FailedFiles,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	fileStmt, err := tx.PrepareContext(ctx, `INSERT INTO scan_files (run_id, position, path, kind, error) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer fileStmt.Close()

	matchStmt, err := tx.PrepareContext(ctx, `INSERT INTO scan_matches (file_id, number, byte_offset) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare match insert: %w", err)
	}
	defer matchStmt.Close()

	for i, f := range run.Files {
		var errText sql.NullString
		if f.Err != "" {
			errText = sql.NullString{String: f.Err, Valid: true}
		}
		res, err := fileStmt.ExecContext(ctx, run.ID, i, f.Path, f.Kind, errText)
		if err != nil {
			return fmt.Errorf("insert scan file %s: %w", f.Path, err)
		}
		fileID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("get file id: %w", err)
		}
		for _, m := range f.Matches {
			if _, err := matchStmt.ExecContext(ctx, fileID, m.Number, m.Offset); err != nil {
				return fmt.Errorf("insert match: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, engine, started_at, duration_ms, file_count, match_count, failed_count
		FROM scan_runs ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		r, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row rowScanner) (RunSummary, error) {
	var r RunSummary
	var startedAt string
	var durationMs int64
	if err := row.Scan(&r.ID, &r.Engine, &startedAt, &durationMs, &r.FileCount, &r.MatchCount, &r.FailedCount); err != nil {
		return r, err
	}
	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return r, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	r.StartedAt = t
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return r, nil
}

// GetRun rebuilds a stored run. Files keep their original order and
// matches are ordered by offset. Unknown ids return ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (*models.ScanRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, engine, started_at, duration_ms, file_count, match_count, failed_count
		FROM scan_runs WHERE id = ?`, id)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	run := &models.ScanRun{
		ID:           summary.ID,
		Engine:       summary.Engine,
		StartedAt:    summary.StartedAt,
		Duration:     summary.Duration,
		Files:        make([]models.FileResult, 0, summary.FileCount),
		TotalMatches: summary.MatchCount,
		FailedFiles:  summary.FailedCount,
	}

	rows, err := s.db.QueryContext(ctx, `SELECT f.id, f.path, f.kind, COALESCE(f.error, ''), m.number, m.byte_offset
		FROM scan_files f
		LEFT JOIN scan_matches m ON m.file_id = f.id
		WHERE f.run_id = ?
		ORDER BY f.position ASC, m.byte_offset ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	lastFileID := int64(-1)
	for rows.Next() {
		var fileID int64
		var path, kind, errText string
		var number sql.NullString
		var offset sql.NullInt64
		if err := rows.Scan(&fileID, &path, &kind, &errText, &number, &offset); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		if fileID != lastFileID {
			run.Files = append(run.Files, models.FileResult{
				Path:    path,
				Kind:    kind,
				Matches: []phone.Match{},
				Err:     errText,
			})
			lastFileID = fileID
		}
		if number.Valid {
			cur := &run.Files[len(run.Files)-1]
			cur.Matches = append(cur.Matches, phone.Match{Number: number.String, Offset: int(offset.Int64)})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run files: %w", err)
	}
	return run, nil
}

// FindNumber lists every recorded occurrence of number, newest run first.
func (s *Store) FindNumber(ctx context.Context, number string) ([]NumberHit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT r.id, r.started_at, f.path, m.byte_offset
		FROM scan_matches m
		JOIN scan_files f ON f.id = m.file_id
		JOIN scan_runs r ON r.id = f.run_id
		WHERE m.number = ?
		ORDER BY r.started_at DESC, f.position ASC, m.byte_offset ASC`, number)
	if err != nil {
		return nil, fmt.Errorf("query number: %w", err)
	}
	defer rows.Close()

	hits := make([]NumberHit, 0)
	for rows.Next() {
		var h NumberHit
		var startedAt string
		if err := rows.Scan(&h.RunID, &startedAt, &h.Path, &h.Offset); err != nil {
			return nil, fmt.Errorf("scan number hit: %w", err)
		}
		if h.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate number hits: %w", err)
	}
	return hits, nil
}
