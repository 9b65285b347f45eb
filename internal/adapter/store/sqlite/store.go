package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bkyoung/lint-scout/internal/domain"
	"github.com/bkyoung/lint-scout/internal/usecase/scout"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists run history and findings using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each gating run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		repository TEXT NOT NULL,
		base_ref TEXT NOT NULL,
		target_ref TEXT NOT NULL,
		merge_base TEXT NOT NULL,
		total_findings INTEGER NOT NULL,
		in_diff_findings INTEGER NOT NULL
	);

	-- Findings that intersected the diff for each run
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		finding_id TEXT NOT NULL,
		tool TEXT NOT NULL,
		file TEXT NOT NULL,
		line_start INTEGER NOT NULL,
		line_end INTEGER NOT NULL,
		message TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_file ON findings(file);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run record together with the findings that survived
// the diff intersection. The insert is transactional so a failed run
// never leaves orphaned findings behind.
func (s *Store) SaveRun(ctx context.Context, rec scout.RunRecord, findings []domain.Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, timestamp, repository, base_ref, target_ref, merge_base, total_findings, in_diff_findings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RunID,
		rec.Timestamp.Unix(),
		rec.Repository,
		rec.BaseRef,
		rec.TargetRef,
		rec.MergeBase,
		rec.Total,
		rec.InDiff,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for _, f := range findings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO findings (run_id, finding_id, tool, file, line_start, line_end, message)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			rec.RunID,
			f.ID,
			f.Tool,
			f.File,
			f.LineStart,
			f.LineEnd,
			f.Message,
		)
		if err != nil {
			return fmt.Errorf("failed to save finding %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run record by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (scout.RunRecord, error) {
	query := `
		SELECT run_id, timestamp, repository, base_ref, target_ref, merge_base, total_findings, in_diff_findings
		FROM runs
		WHERE run_id = ?
	`

	var rec scout.RunRecord
	var timestamp int64

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&rec.RunID,
		&timestamp,
		&rec.Repository,
		&rec.BaseRef,
		&rec.TargetRef,
		&rec.MergeBase,
		&rec.Total,
		&rec.InDiff,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return scout.RunRecord{}, fmt.Errorf("run not found: %s", runID)
		}
		return scout.RunRecord{}, fmt.Errorf("failed to get run: %w", err)
	}

	rec.Timestamp = time.Unix(timestamp, 0)
	return rec, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]scout.RunRecord, error) {
	query := `
		SELECT run_id, timestamp, repository, base_ref, target_ref, merge_base, total_findings, in_diff_findings
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []scout.RunRecord
	for rows.Next() {
		var rec scout.RunRecord
		var timestamp int64
		if err := rows.Scan(
			&rec.RunID,
			&timestamp,
			&rec.Repository,
			&rec.BaseRef,
			&rec.TargetRef,
			&rec.MergeBase,
			&rec.Total,
			&rec.InDiff,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.Timestamp = time.Unix(timestamp, 0)
		runs = append(runs, rec)
	}

	return runs, rows.Err()
}

// RunFindings retrieves the stored findings for a run.
func (s *Store) RunFindings(ctx context.Context, runID string) ([]domain.Finding, error) {
	query := `
		SELECT finding_id, tool, file, line_start, line_end, message
		FROM findings
		WHERE run_id = ?
		ORDER BY file, line_start
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []domain.Finding
	for rows.Next() {
		var f domain.Finding
		if err := rows.Scan(&f.ID, &f.Tool, &f.File, &f.LineStart, &f.LineEnd, &f.Message); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}

	return findings, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
