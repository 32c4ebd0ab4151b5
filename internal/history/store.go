package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"crunch/internal/config"
)

// DBFileName is the history database inside the configured log directory.
const DBFileName = "history.db"

// Store persists batch runs and their per-file outcomes, backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, DBFileName))
}

// OpenPath opens a history database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
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
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
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

// RecordRun persists a completed run and its per-file outcomes in one
// transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, files []FileRecord) error {
	if run.ID == "" {
		return errors.New("run id required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, input_root, output_root, started_at, finished_at,
            total_files, success_count, failed_count, skipped_count,
            input_bytes, output_bytes
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.InputRoot,
		run.OutputRoot,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.TotalFiles,
		run.SuccessCount,
		run.FailedCount,
		run.SkippedCount,
		run.InputBytes,
		run.OutputBytes,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, file := range files {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_files (run_id, filename, outcome, message) VALUES (?, ?, ?, ?)`,
			run.ID,
			file.Filename,
			file.Outcome,
			file.Message,
		); err != nil {
			return fmt.Errorf("insert run file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, input_root, output_root, started_at, finished_at,
                total_files, success_count, failed_count, skipped_count,
                input_bytes, output_bytes
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Files returns the per-file outcomes recorded for a run, in insertion order.
func (s *Store) Files(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT filename, outcome, COALESCE(message, '') FROM run_files WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var file FileRecord
		if err := rows.Scan(&file.Filename, &file.Outcome, &file.Message); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var startedAt, finishedAt string
	if err := rows.Scan(
		&run.ID,
		&run.InputRoot,
		&run.OutputRoot,
		&startedAt,
		&finishedAt,
		&run.TotalFiles,
		&run.SuccessCount,
		&run.FailedCount,
		&run.SkippedCount,
		&run.InputBytes,
		&run.OutputBytes,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return run, nil
}
