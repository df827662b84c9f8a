package runstore

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

// ErrRunNotFound is returned when no run matches an identifier.
var ErrRunNotFound = errors.New("run not found")

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the ledger at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
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

	store := &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}
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

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// StartRun inserts a new running run for command.
func (s *Store) StartRun(ctx context.Context, command string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Command:   strings.TrimSpace(command),
		Status:    StatusRunning,
		StartedAt: s.now(),
	}
	if run.Command == "" {
		return nil, errors.New("start run: command required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Command, run.Status, formatTime(run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordOutcome stores a per-file outcome for a run.
func (s *Store) RecordOutcome(ctx context.Context, o Outcome) error {
	if o.RecordedAt.IsZero() {
		o.RecordedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_outcomes (run_id, stage, source, status, detail, spans, chunks, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.Stage, o.Source, o.Status, nullableString(o.Detail), o.Spans, o.Chunks, formatTime(o.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// RecordWER stores one scored transcript for a run.
func (s *Store) RecordWER(ctx context.Context, row WERRow) error {
	if row.RecordedAt.IsZero() {
		row.RecordedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wer_results (run_id, base, substitutions, deletions, insertions, matches, reference_length, wer, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.RunID, row.Base, row.Substitutions, row.Deletions, row.Insertions, row.Matches,
		row.ReferenceLength, row.WER, formatTime(row.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("insert wer result: %w", err)
	}
	return nil
}

// FinishRun closes a run, tallying per-file outcomes. A non-nil runErr marks
// the run failed; otherwise it is completed.
func (s *Store) FinishRun(ctx context.Context, runID string, runErr error) error {
	status := StatusCompleted
	var message any
	if runErr != nil {
		status = StatusFailed
		message = runErr.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET
            status = ?,
            finished_at = ?,
            error_message = ?,
            files_ok = (SELECT COUNT(1) FROM file_outcomes WHERE run_id = runs.id AND status = ?),
            files_failed = (SELECT COUNT(1) FROM file_outcomes WHERE run_id = runs.id AND status = ?),
            files_skipped = (SELECT COUNT(1) FROM file_outcomes WHERE run_id = runs.id AND status = ?)
         WHERE id = ?`,
		status, formatTime(s.now()), message, StatusOK, StatusFailed, StatusSkipped, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
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
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by full ID or unique prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY started_at DESC LIMIT 2`,
		id, stripWildcards(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("run prefix %q is ambiguous", id)
	}
}

// Outcomes returns the per-file outcomes of a run in recording order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, stage, source, status, detail, spans, chunks, recorded_at
         FROM file_outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			o        Outcome
			status   string
			detail   sql.NullString
			recorded string
		)
		if err := rows.Scan(&o.RunID, &o.Stage, &o.Source, &status, &detail, &o.Spans, &o.Chunks, &recorded); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Status = Status(status)
		o.Detail = detail.String
		o.RecordedAt = parseTime(recorded)
		out = append(out, o)
	}
	return out, rows.Err()
}

// WERResults returns the scored transcripts of a run ordered by base name.
func (s *Store) WERResults(ctx context.Context, runID string) ([]WERRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, base, substitutions, deletions, insertions, matches, reference_length, wer, recorded_at
         FROM wer_results WHERE run_id = ? ORDER BY base`, runID)
	if err != nil {
		return nil, fmt.Errorf("list wer results: %w", err)
	}
	defer rows.Close()

	var out []WERRow
	for rows.Next() {
		var (
			r        WERRow
			recorded string
		)
		if err := rows.Scan(&r.RunID, &r.Base, &r.Substitutions, &r.Deletions, &r.Insertions,
			&r.Matches, &r.ReferenceLength, &r.WER, &recorded); err != nil {
			return nil, fmt.Errorf("scan wer result: %w", err)
		}
		r.RecordedAt = parseTime(recorded)
		out = append(out, r)
	}
	return out, rows.Err()
}
