package batch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"crunch/internal/config"
	"crunch/internal/convert"
	"crunch/internal/deps"
	"crunch/internal/history"
	"crunch/internal/logging"
)

// The stub converts by copying a marker into the output path (last argument)
// and fails with a diagnostic when the staged input (second argument)
// contains the FAIL marker. An invocation counter file can be injected via
// CRUNCH_TEST_COUNT for idempotence assertions.
const stubScript = `#!/bin/sh
if [ -n "$CRUNCH_TEST_COUNT" ]; then
  echo 1 >> "$CRUNCH_TEST_COUNT"
fi
if grep -q FAIL "$2" 2>/dev/null; then
  echo "Error: invalid data found when processing input" >&2
  exit 1
fi
for arg; do out=$arg; done
printf 'converted payload' > "$out"
`

func writeStubTool(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg-stub")
	if err := os.WriteFile(path, []byte(stubScript), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func testConfig(workers int) *config.Config {
	return &config.Config{Batch: config.Batch{Workers: workers}}
}

func newTestRunner(t *testing.T, workers int, opts ...Option) *Runner {
	t.Helper()
	tool := writeStubTool(t)
	base := []Option{WithLocator(func() (string, error) { return tool, nil })}
	return New(testConfig(workers), logging.NewNop(), append(base, opts...)...)
}

// writeInput creates an input file with its mtime pushed into the past so
// freshly written outputs always compare strictly newer.
func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunMixedSuccessAndFailure(t *testing.T) {
	inputDir := t.TempDir()
	writeInput(t, inputDir, "a.mp4", "good content")
	writeInput(t, inputDir, "b.mp4", "FAIL content")

	runner := newTestRunner(t, 1)
	report, err := runner.Run(context.Background(), inputDir, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.TotalFiles != 2 || report.SuccessCount != 1 || report.FailedCount != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.SuccessCount+report.FailedCount != report.TotalFiles {
		t.Fatalf("count invariant violated: %+v", report)
	}

	outputDir := filepath.Join(inputDir, DefaultOutputDirName)
	if _, err := os.Stat(filepath.Join(outputDir, "a.mpeg")); err != nil {
		t.Fatalf("expected a.mpeg: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "b.mpeg")); err == nil {
		t.Fatal("b.mpeg must not exist after a failed conversion")
	}

	manifest, err := os.ReadFile(filepath.Join(outputDir, ManifestFileName))
	if err != nil {
		t.Fatalf("expected failed-file manifest: %v", err)
	}
	if string(manifest) != "2. b.mp4\n" {
		t.Fatalf("unexpected manifest: %q", manifest)
	}
	if strings.Contains(string(manifest), "a.mp4") {
		t.Fatal("manifest must not list successful files")
	}
}

func TestRunSecondPassSkipsFreshOutputs(t *testing.T) {
	inputDir := t.TempDir()
	writeInput(t, inputDir, "one.mp4", "good")
	writeInput(t, inputDir, "sub two.mp4", "good")

	countFile := filepath.Join(t.TempDir(), "count")
	t.Setenv("CRUNCH_TEST_COUNT", countFile)

	runner := newTestRunner(t, 1)
	first, err := runner.Run(context.Background(), inputDir, "")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.SuccessCount != 2 || first.SkippedCount != 0 {
		t.Fatalf("unexpected first report: %+v", first)
	}

	second, err := runner.Run(context.Background(), inputDir, "")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.SuccessCount != 2 || second.SkippedCount != 2 || second.FailedCount != 0 {
		t.Fatalf("expected all-skip second run, got %+v", second)
	}

	count, err := os.ReadFile(countFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(count), "1"); got != 2 {
		t.Fatalf("tool invoked %d times, want 2 (second run must not invoke it)", got)
	}
}

func TestRunReconvertsStaleOutput(t *testing.T) {
	inputDir := t.TempDir()
	input := writeInput(t, inputDir, "movie.mp4", "good")

	runner := newTestRunner(t, 1)
	if _, err := runner.Run(context.Background(), inputDir, ""); err != nil {
		t.Fatal(err)
	}

	// Make the output older than the input: the staleness skip must not fire.
	output := filepath.Join(inputDir, DefaultOutputDirName, "movie.mpeg")
	inInfo, err := os.Stat(input)
	if err != nil {
		t.Fatal(err)
	}
	stale := inInfo.ModTime().Add(-time.Hour)
	if err := os.Chtimes(output, stale, stale); err != nil {
		t.Fatal(err)
	}

	report, err := runner.Run(context.Background(), inputDir, "")
	if err != nil {
		t.Fatal(err)
	}
	if report.SkippedCount != 0 {
		t.Fatalf("stale output must be reconverted, got %+v", report)
	}

	outInfo, err := os.Stat(output)
	if err != nil {
		t.Fatal(err)
	}
	if !outInfo.ModTime().After(inInfo.ModTime()) {
		t.Fatal("expected output rewritten with a fresh timestamp")
	}
}

func TestRunEmptyInputFolder(t *testing.T) {
	inputDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(inputDir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	tool := writeStubTool(t)
	runner := New(testConfig(1), logger, WithLocator(func() (string, error) { return tool, nil }))

	report, err := runner.Run(context.Background(), inputDir, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.TotalFiles != 0 || report.SuccessCount != 0 || report.FailedCount != 0 {
		t.Fatalf("expected zero report, got %+v", report)
	}
	if !strings.Contains(buf.String(), "no mp4 files found") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "conversion report") {
		t.Fatal("zero-file run must not emit a report line")
	}
	if _, err := os.Stat(filepath.Join(inputDir, DefaultOutputDirName, ManifestFileName)); err == nil {
		t.Fatal("zero-file run must not write a manifest")
	}
}

func TestRunAbortsWhenToolMissing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	inputDir := t.TempDir()
	writeInput(t, inputDir, "a.mp4", "good")

	runner := New(testConfig(1), logging.NewNop(),
		WithLocator(func() (string, error) { return "", deps.ErrFFmpegNotFound }))

	report, err := runner.Run(context.Background(), inputDir, "")
	if !errors.Is(err, deps.ErrFFmpegNotFound) {
		t.Fatalf("expected ErrFFmpegNotFound, got %v", err)
	}
	if report != nil {
		t.Fatal("no report may be produced when the tool is missing")
	}
	if _, statErr := os.Stat(filepath.Join(inputDir, DefaultOutputDirName)); statErr == nil {
		t.Fatal("output directory must not be created when the tool is missing")
	}
}

func TestRunRejectsInvalidInputDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	runner := New(testConfig(1), logging.NewNop(),
		WithLocator(func() (string, error) { return "/usr/bin/true", nil }))

	_, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "absent"), "")
	if !errors.Is(err, ErrInvalidInputDir) {
		t.Fatalf("expected ErrInvalidInputDir, got %v", err)
	}
}

func TestRunHonorsExplicitOutputDir(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "elsewhere")
	writeInput(t, inputDir, "clip.mp4", "good")

	runner := newTestRunner(t, 1)
	report, err := runner.Run(context.Background(), inputDir, outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if report.SuccessCount != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "clip.mpeg")); err != nil {
		t.Fatalf("expected output in explicit directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(inputDir, DefaultOutputDirName)); err == nil {
		t.Fatal("default output directory must not be created when one is supplied")
	}
}

func TestRunWorkerPoolKeepsReportInvariant(t *testing.T) {
	inputDir := t.TempDir()
	names := []string{"a.mp4", "b.mp4", "c.mp4", "d.mp4", "e.mp4", "f.mp4"}
	for i, name := range names {
		content := "good"
		if i%3 == 0 {
			content = "FAIL"
		}
		writeInput(t, inputDir, name, content)
	}

	runner := newTestRunner(t, 4)
	report, err := runner.Run(context.Background(), inputDir, "")
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalFiles != len(names) {
		t.Fatalf("unexpected total: %+v", report)
	}
	if report.SuccessCount+report.FailedCount != report.TotalFiles {
		t.Fatalf("count invariant violated under concurrency: %+v", report)
	}
	if report.FailedCount != 2 {
		t.Fatalf("expected 2 failures, got %+v", report)
	}
}

func TestRunRefusesLockedOutputDir(t *testing.T) {
	inputDir := t.TempDir()
	writeInput(t, inputDir, "a.mp4", "good")

	outputDir := filepath.Join(inputDir, DefaultOutputDirName)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	other := flock.New(filepath.Join(outputDir, lockFileName))
	locked, err := other.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take competing lock: locked=%v err=%v", locked, err)
	}
	defer other.Unlock()

	runner := newTestRunner(t, 1)
	if _, err := runner.Run(context.Background(), inputDir, ""); !errors.Is(err, ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	inputDir := t.TempDir()
	writeInput(t, inputDir, "a.mp4", "good")
	writeInput(t, inputDir, "b.mp4", "FAIL")

	store, err := history.OpenPath(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	runner := newTestRunner(t, 1, WithHistory(store))
	if _, err := runner.Run(context.Background(), inputDir, ""); err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].TotalFiles != 2 || runs[0].FailedCount != 1 {
		t.Fatalf("unexpected recorded run: %+v", runs[0])
	}

	files, err := store.Files(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 file records, got %d", len(files))
	}
	if files[1].Filename != "b.mp4" || files[1].Outcome != history.OutcomeFailed {
		t.Fatalf("unexpected file record: %+v", files[1])
	}
}

func TestRunUsesConverterTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	inputDir := t.TempDir()
	writeInput(t, inputDir, "slow.mp4", "good")

	slowTool := filepath.Join(t.TempDir(), "slow-stub")
	if err := os.WriteFile(slowTool, []byte("#!/bin/sh\nsleep 5\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	runner := New(testConfig(1), logging.NewNop(),
		WithLocator(func() (string, error) { return slowTool, nil }),
		WithConverterOptions(convert.WithTimeout(100*time.Millisecond)),
	)
	report, err := runner.Run(context.Background(), inputDir, "")
	if err != nil {
		t.Fatal(err)
	}
	if report.FailedCount != 1 {
		t.Fatalf("timed-out conversion must count as failure: %+v", report)
	}
}
