package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Older databases are
// rejected; the ledger is disposable.
const schemaVersion = 1

var (
	// ErrSchemaMismatch indicates the database was written by another schema.
	ErrSchemaMismatch = errors.New("history schema version mismatch")
	// ErrRunNotFound reports that no run matches an identifier.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun reports that a run prefix matches several runs.
	ErrAmbiguousRun = errors.New("run prefix is ambiguous")
)

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is the sqlite backed Recorder.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
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
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// StartRun implements Recorder.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	status := run.Status
	if status == "" {
		status = RunRunning
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project_id, action, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.ProjectID, run.Action, string(status), formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordUnit implements Recorder.
func (s *Store) RecordUnit(ctx context.Context, unit Unit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO units (run_id, stage, unit_id, outcome, detail, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		unit.RunID, unit.Stage, unit.UnitID, string(unit.Outcome), unit.Detail,
		unit.Duration.Milliseconds(), formatTime(unit.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

// FinishRun implements Recorder. Outcome counters are derived from the
// recorded units.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, errMsg string, finishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET
			status = ?,
			error = ?,
			finished_at = ?,
			generated = (SELECT COUNT(1) FROM units WHERE run_id = runs.id AND outcome = 'generated'),
			skipped = (SELECT COUNT(1) FROM units WHERE run_id = runs.id AND outcome = 'skipped'),
			warnings = (SELECT COUNT(1) FROM units WHERE run_id = runs.id AND outcome = 'warning'),
			failed = (SELECT COUNT(1) FROM units WHERE run_id = runs.id AND outcome = 'failed')
		 WHERE id = ?`,
		string(status), errMsg, formatTime(finishedAt), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// ListRuns returns the most recent runs first. An empty projectID lists every
// project; limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, projectID string, limit int) ([]Run, error) {
	query := `SELECT id, project_id, action, status, error, generated, skipped, warnings, failed, started_at, finished_at
		FROM runs`
	var args []any
	if projectID != "" {
		query += " WHERE project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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

// ResolveRunID expands a unique run identifier prefix.
func (s *Store) ResolveRunID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2", len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolve run: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousRun, prefix)
	}
}

// ListUnits returns the units of a run in the order they were recorded.
func (s *Store) ListUnits(ctx context.Context, runID string) ([]Unit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, stage, unit_id, outcome, detail, duration_ms, recorded_at
		 FROM units WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var (
			unit       Unit
			outcome    string
			durationMS int64
			recorded   string
		)
		if err := rows.Scan(&unit.RunID, &unit.Stage, &unit.UnitID, &outcome, &unit.Detail, &durationMS, &recorded); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		unit.Outcome = Outcome(outcome)
		unit.Duration = time.Duration(durationMS) * time.Millisecond
		unit.RecordedAt = parseTime(recorded)
		units = append(units, unit)
	}
	return units, rows.Err()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run      Run
		status   string
		started  string
		finished string
	)
	if err := rows.Scan(&run.ID, &run.ProjectID, &run.Action, &status, &run.Error,
		&run.Generated, &run.Skipped, &run.Warnings, &run.Failed, &started, &finished); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = RunStatus(status)
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
