package runstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, command, status, started_at, finished_at, error_message, files_ok, files_failed, files_skipped"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		status       string
		startedRaw   string
		finishedRaw  sql.NullString
		errorMessage sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Command,
		&status,
		&startedRaw,
		&finishedRaw,
		&errorMessage,
		&run.FilesOK,
		&run.FilesFailed,
		&run.FilesSkipped,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	run.ErrorMessage = errorMessage.String
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func stripWildcards(value string) string {
	r := strings.NewReplacer(`%`, ``, `_`, ``)
	return r.Replace(value)
}
