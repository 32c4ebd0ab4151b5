package batch

import (
	"time"

	"crunch/internal/fileutil"
	"crunch/internal/history"
)

// Report aggregates the outcome of one batch run. Counters accumulate
// monotonically while the run executes and are final once Run returns.
// SuccessCount includes staleness skips, so SuccessCount + FailedCount always
// equals TotalFiles.
type Report struct {
	TotalFiles       int
	SuccessCount     int
	FailedCount      int
	SkippedCount     int
	Elapsed          time.Duration
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// SavingsBytes returns how many bytes the conversion saved.
func (r *Report) SavingsBytes() int64 {
	return r.TotalInputBytes - r.TotalOutputBytes
}

// SavingsPercent returns the saved share of the total input size, guarded
// against an empty input set.
func (r *Report) SavingsPercent() float64 {
	if r.TotalInputBytes == 0 {
		return 0
	}
	return float64(r.SavingsBytes()) / float64(r.TotalInputBytes) * 100
}

// buildReport folds per-task outcomes into the aggregate report. Output bytes
// sum the sizes of this run's task output paths that exist on disk; outputs
// unrelated to this run are not counted.
func buildReport(tasks []Task, outcomes []outcome, elapsed time.Duration) *Report {
	report := &Report{TotalFiles: len(tasks), Elapsed: elapsed}
	for i, task := range tasks {
		switch outcomes[i].status {
		case history.OutcomeFailed:
			report.FailedCount++
		case history.OutcomeSkipped:
			report.SkippedCount++
			report.SuccessCount++
		default:
			report.SuccessCount++
		}
		report.TotalInputBytes += fileutil.FileSize(task.InputPath)
		report.TotalOutputBytes += fileutil.FileSize(task.OutputPath)
	}
	return report
}
