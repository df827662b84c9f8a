package runstore

import "time"

// Status is a per-file outcome or overall run state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusOK        Status = "ok"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run is one batch command invocation.
type Run struct {
	ID           string
	Command      string
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	ErrorMessage string
	FilesOK      int
	FilesFailed  int
	FilesSkipped int
}

// Duration returns the elapsed run time, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome is the result of one stage for one source file.
type Outcome struct {
	RunID      string
	Stage      string
	Source     string
	Status     Status
	Detail     string
	Spans      int
	Chunks     int
	RecordedAt time.Time
}

// WERRow is one scored transcript.
type WERRow struct {
	RunID           string
	Base            string
	Substitutions   int
	Deletions       int
	Insertions      int
	Matches         int
	ReferenceLength int
	WER             float64
	RecordedAt      time.Time
}
