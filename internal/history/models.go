package history

import "time"

// Per-file outcomes recorded for a run.
const (
	OutcomeConverted = "converted"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Run is the persisted record of one batch invocation.
type Run struct {
	ID           string
	InputRoot    string
	OutputRoot   string
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalFiles   int
	SuccessCount int
	FailedCount  int
	SkippedCount int
	InputBytes   int64
	OutputBytes  int64
}

// Elapsed returns the wall-clock duration of the run.
func (r Run) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileRecord is one per-file outcome inside a run.
type FileRecord struct {
	Filename string
	Outcome  string
	Message  string
}
