package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Import run statuses, mirrored in the import_runs audit table.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// ImportRun is one audit row describing a single invocation of import.
type ImportRun struct {
	RunID      string
	SourceFile string
	Imported   int
	Inserted   int
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// StartImportRun records a RUNNING audit row and returns its run id.
func (s *Store) StartImportRun(ctx context.Context, sourceFile string) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (run_id, source_file, status, started_ts)
		VALUES (?, ?, ?, ?)
	`, runID, sourceFile, RunStatusRunning, time.Now().UTC().Format(tsFormat))
	if err != nil {
		return "", fmt.Errorf("StartImportRun: %w", err)
	}
	return runID, nil
}

// FinishImportRun closes an audit row with the final counts. A non-nil
// runErr marks the run FAILED and stores the message.
func (s *Store) FinishImportRun(ctx context.Context, runID string, imported, inserted int, runErr error) error {
	status := RunStatusSuccess
	errMsg := ""
	if runErr != nil {
		status = RunStatusFailed
		errMsg = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_runs
		SET imported = ?, inserted = ?, status = ?, error_message = ?, finished_ts = ?
		WHERE run_id = ?
	`, imported, inserted, status, errMsg, time.Now().UTC().Format(tsFormat), runID)
	if err != nil {
		return fmt.Errorf("FinishImportRun: %w", err)
	}
	return nil
}

// LastImportRun returns the most recently started run, or nil when no import
// has ever been recorded.
func (s *Store) LastImportRun(ctx context.Context) (*ImportRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, source_file, imported, inserted, status, error_message, started_ts, finished_ts
		FROM import_runs
		ORDER BY started_ts DESC, run_id
		LIMIT 1
	`)

	var r ImportRun
	var startedS string
	var finishedS *string
	err := row.Scan(&r.RunID, &r.SourceFile, &r.Imported, &r.Inserted, &r.Status, &r.Error, &startedS, &finishedS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("LastImportRun: %w", err)
	}
	if r.StartedAt, err = time.Parse(tsFormat, startedS); err != nil {
		return nil, fmt.Errorf("LastImportRun: started_ts %q: %w", startedS, err)
	}
	if finishedS != nil {
		ft, err := time.Parse(tsFormat, *finishedS)
		if err != nil {
			return nil, fmt.Errorf("LastImportRun: finished_ts %q: %w", *finishedS, err)
		}
		r.FinishedAt = &ft
	}
	return &r, nil
}
