package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mediascribe/internal/config"
)

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at cfg.HistoryPath().
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(ctx, cfg.HistoryPath())
}

// OpenPath opens the database at an explicit path.
func OpenPath(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("begin run: id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source_dir, engine, mode, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceDir, run.Engine, run.Mode, StatusRunning, formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordItem appends a per-file outcome to a run.
func (s *Store) RecordItem(ctx context.Context, item Item) error {
	if item.RecordedAt.IsZero() {
		item.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_items (run_id, source_path, output_path, outcome, detail, duration_ms, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.RunID, item.SourcePath, nullableString(item.OutputPath), item.Outcome,
		nullableString(item.Detail), item.Duration.Milliseconds(), formatTime(item.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run item: %w", err)
	}
	return nil
}

// FinishRun stores totals and the final status for a run.
func (s *Store) FinishRun(ctx context.Context, runID string, totals Totals) error {
	if totals.Status == "" {
		totals.Status = StatusCompleted
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, written = ?, skipped = ?, failed = ?, error_message = ?
         WHERE id = ?`,
		totals.Status, formatTime(time.Now()), totals.Written, totals.Skipped, totals.Failed,
		nullableString(totals.Error), runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, source_dir, engine, mode, status, started_at, finished_at, written, skipped, failed, error_message
              FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                 Run
			started             string
			finished, errorText sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.SourceDir, &run.Engine, &run.Mode, &run.Status, &started, &finished,
			&run.Written, &run.Skipped, &run.Failed, &errorText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		run.Error = errorText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Items returns the recorded outcomes of a run in insertion order.
func (s *Store) Items(ctx context.Context, runID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_path, output_path, outcome, detail, duration_ms, recorded_at
         FROM run_items WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item           Item
			output, detail sql.NullString
			durationMS     int64
			recorded       string
		)
		if err := rows.Scan(&item.RunID, &item.SourcePath, &output, &item.Outcome, &detail, &durationMS, &recorded); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.OutputPath = output.String
		item.Detail = detail.String
		item.Duration = time.Duration(durationMS) * time.Millisecond
		item.RecordedAt = parseTime(recorded)
		items = append(items, item)
	}
	return items, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
