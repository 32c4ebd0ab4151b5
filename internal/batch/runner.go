package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"crunch/internal/config"
	"crunch/internal/convert"
	"crunch/internal/deps"
	"crunch/internal/history"
	"crunch/internal/logging"
)

const lockFileName = ".crunch.lock"

// ErrOutputLocked indicates another run currently owns the output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// ErrInvalidInputDir indicates the input root does not exist or is not a
// directory.
var ErrInvalidInputDir = errors.New("invalid input directory")

// Option configures the runner.
type Option func(*Runner)

// WithHistory records runs in the given store. A nil store disables history.
func WithHistory(store *history.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithLocator overrides tool resolution (primarily for tests).
func WithLocator(locate func() (string, error)) Option {
	return func(r *Runner) {
		if locate != nil {
			r.locate = locate
		}
	}
}

// WithConverterOptions passes extra options through to the per-file
// converter (primarily for tests).
func WithConverterOptions(opts ...convert.Option) Option {
	return func(r *Runner) { r.convOpts = append(r.convOpts, opts...) }
}

// Runner walks an input tree and drives one conversion per discovered file,
// aggregating outcomes into a Report.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	locate   func() (string, error)
	convOpts []convert.Option
}

// New constructs a batch runner. The logger is the injected observability
// collaborator; all progress, warnings, and the final report flow through it.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "batch"),
		locate: deps.LocateFFmpeg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// outcome is the per-task result folded into the report.
type outcome struct {
	status  string
	message string
}

// Run converts every matching file under inputRoot into outputRoot (or the
// default subdirectory when outputRoot is empty). A missing transcoder or an
// unusable input directory aborts the whole batch before any conversion;
// per-file failures are recorded and the batch continues.
func (r *Runner) Run(ctx context.Context, inputRoot, outputRoot string) (*Report, error) {
	info, err := os.Stat(inputRoot)
	if err != nil || !info.IsDir() {
		r.logger.Error("invalid input directory", logging.String("input", inputRoot))
		return nil, fmt.Errorf("%w: %s", ErrInvalidInputDir, inputRoot)
	}
	if err := checkReadable(inputRoot); err != nil {
		r.logger.Error("input directory is not readable", logging.Error(err))
		return nil, err
	}

	toolPath, err := r.locate()
	if err != nil {
		r.logger.Error("transcoder not found, install FFmpeg first", logging.Error(err))
		r.logger.Info("download FFmpeg builds from " + deps.DownloadURL)
		r.logger.Info("extract the archive and add its bin directory to PATH")
		return nil, err
	}

	outputDir := strings.TrimSpace(outputRoot)
	if outputDir == "" {
		outputDir = filepath.Join(inputRoot, DefaultOutputDirName)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := checkWritable(outputDir); err != nil {
		r.logger.Error("output directory is not writable", logging.Error(err))
		return nil, err
	}

	lockPath := filepath.Join(outputDir, lockFileName)
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, outputDir)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	inputs, err := discoverInputs(inputRoot)
	if err != nil {
		return nil, fmt.Errorf("discover inputs: %w", err)
	}
	if len(inputs) == 0 {
		r.logger.Warn("no mp4 files found", logging.String("input", inputRoot))
		return &Report{}, nil
	}

	r.logger.Info("starting batch",
		logging.Int("files", len(inputs)),
		logging.String("tool", toolPath),
		logging.String("output", outputDir),
		logging.Int("workers", r.cfg.Batch.Workers),
	)

	conv, err := convert.New(toolPath, r.convOpts...)
	if err != nil {
		return nil, fmt.Errorf("build converter: %w", err)
	}

	tasks := makeTasks(inputs, outputDir)
	started := time.Now()
	outcomes := r.processAll(ctx, conv, tasks)
	report := buildReport(tasks, outcomes, time.Since(started))

	r.emitReport(report, outputDir)

	if written, err := writeFailedManifest(outputDir, tasks); err != nil {
		r.logger.Warn("could not write failed-file manifest", logging.Error(err))
	} else if written > 0 {
		r.logger.Info("failed-file manifest written",
			logging.Int("entries", written),
			logging.String("path", filepath.Join(outputDir, ManifestFileName)),
		)
	}

	r.recordHistory(ctx, inputRoot, outputDir, started, report, tasks, outcomes)

	return report, nil
}

// processAll runs every task through the converter. With one worker the loop
// is strictly sequential; otherwise a bounded pool consumes the task queue.
// Each worker writes only its own outcome slot, and log lines are emitted
// whole per task, so the observable report stays correct under concurrency.
func (r *Runner) processAll(ctx context.Context, conv *convert.Converter, tasks []Task) []outcome {
	outcomes := make([]outcome, len(tasks))

	workers := r.cfg.Batch.Workers
	if workers <= 1 {
		for i, task := range tasks {
			outcomes[i] = r.processOne(ctx, conv, i, len(tasks), task)
		}
		return outcomes
	}

	type indexedTask struct {
		index int
		task  Task
	}
	queue := make(chan indexedTask)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				outcomes[item.index] = r.processOne(ctx, conv, item.index, len(tasks), item.task)
			}
		}()
	}
	for i, task := range tasks {
		queue <- indexedTask{index: i, task: task}
	}
	close(queue)
	wg.Wait()
	return outcomes
}

func (r *Runner) processOne(ctx context.Context, conv *convert.Converter, index, total int, task Task) outcome {
	name := filepath.Base(task.InputPath)
	fileAttrs := func(extra ...logging.Attr) []any {
		attrs := []logging.Attr{
			logging.String("file", name),
			logging.Int("index", index+1),
			logging.Int("total", total),
		}
		return logging.Args(append(attrs, extra...)...)
	}

	if outputIsFresh(task) {
		r.logger.Info("⏩ skipped, output is newer than input", fileAttrs()...)
		return outcome{status: history.OutcomeSkipped}
	}

	r.logger.Info("converting", fileAttrs()...)
	result := conv.Convert(ctx, task.InputPath, task.OutputPath)
	if result.Success {
		r.logger.Info("✅ converted", fileAttrs(logging.String("summary", result.Message))...)
		return outcome{status: history.OutcomeConverted, message: result.Message}
	}
	r.logger.Error("❌ failed", fileAttrs(logging.String("reason", result.Message))...)
	return outcome{status: history.OutcomeFailed, message: result.Message}
}

// outputIsFresh reports whether the task's output already exists with a
// modification time strictly newer than the input's. A staleness heuristic,
// not a content check: touched timestamps produce false skips.
func outputIsFresh(task Task) bool {
	outInfo, err := os.Stat(task.OutputPath)
	if err != nil {
		return false
	}
	inInfo, err := os.Stat(task.InputPath)
	if err != nil {
		return false
	}
	return outInfo.ModTime().After(inInfo.ModTime())
}

func (r *Runner) emitReport(report *Report, outputDir string) {
	r.logger.Info("conversion report",
		logging.Int("total_files", report.TotalFiles),
		logging.Int("succeeded", report.SuccessCount),
		logging.Int("failed", report.FailedCount),
		logging.Int("skipped", report.SkippedCount),
		logging.Duration("elapsed", report.Elapsed.Round(time.Second)),
		logging.Float64("input_mb", toMB(report.TotalInputBytes)),
		logging.Float64("output_mb", toMB(report.TotalOutputBytes)),
		logging.Float64("savings_mb", toMB(report.SavingsBytes())),
		logging.Float64("savings_percent", report.SavingsPercent()),
		logging.String("output", outputDir),
	)
}

func toMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

func (r *Runner) recordHistory(ctx context.Context, inputRoot, outputDir string, started time.Time, report *Report, tasks []Task, outcomes []outcome) {
	if r.store == nil {
		return
	}
	files := make([]history.FileRecord, 0, len(tasks))
	for i, task := range tasks {
		files = append(files, history.FileRecord{
			Filename: filepath.Base(task.InputPath),
			Outcome:  outcomes[i].status,
			Message:  outcomes[i].message,
		})
	}
	run := history.Run{
		ID:           uuid.NewString(),
		InputRoot:    inputRoot,
		OutputRoot:   outputDir,
		StartedAt:    started,
		FinishedAt:   started.Add(report.Elapsed),
		TotalFiles:   report.TotalFiles,
		SuccessCount: report.SuccessCount,
		FailedCount:  report.FailedCount,
		SkippedCount: report.SkippedCount,
		InputBytes:   report.TotalInputBytes,
		OutputBytes:  report.TotalOutputBytes,
	}
	if err := r.store.RecordRun(ctx, run, files); err != nil {
		r.logger.Warn("could not record run history", logging.Error(err))
	}
}
