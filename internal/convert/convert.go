package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"crunch/internal/fileutil"
)

// DefaultTimeout is the hard wall-clock deadline on a single ffmpeg
// invocation. Exceeding it fails the file; there is no retry.
const DefaultTimeout = 600 * time.Second

// The input is staged into the scoped temp directory under a fixed short
// name so tool-side path-length or special-character limits never apply to
// the real input path.
const (
	tempInputName  = "input.mp4"
	tempOutputName = "output.mpeg"
)

// Result is the outcome of a single conversion. Message carries a
// size/compression summary on success and the classified error text on
// failure.
type Result struct {
	Success bool
	Message string
}

// Executor abstracts command execution for testability. Run returns the
// tool's stderr alongside any execution error; ffmpeg emits all diagnostics
// on stderr.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// Option configures the converter.
type Option func(*Converter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Converter) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout overrides the per-file deadline (primarily for tests; the
// production deadline is DefaultTimeout).
func WithTimeout(timeout time.Duration) Option {
	return func(c *Converter) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Converter drives one external transcode per input file.
type Converter struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a converter around the resolved tool binary.
func New(binary string, opts ...Option) (*Converter, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("transcoder binary required")
	}
	c := &Converter{
		binary:  binary,
		timeout: DefaultTimeout,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Convert transcodes inputPath into outputPath under the fixed profile.
// Every failure mode (nonzero exit, timeout, staging or launch error) is
// reported through the Result; Convert never returns an error to its caller.
// Re-running with the same inputs is safe but always re-executes the
// transcode; skip caching is the orchestrator's job.
func (c *Converter) Convert(ctx context.Context, inputPath, outputPath string) Result {
	tmpDir, err := os.MkdirTemp("", "crunch-")
	if err != nil {
		return Result{Message: fmt.Sprintf("create temp directory: %v", err)}
	}
	defer os.RemoveAll(tmpDir)

	tmpInput := filepath.Join(tmpDir, tempInputName)
	if err := fileutil.CopyFile(inputPath, tmpInput); err != nil {
		return Result{Message: fmt.Sprintf("stage input: %v", err)}
	}
	tmpOutput := filepath.Join(tmpDir, tempOutputName)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stderr, err := c.exec.Run(runCtx, c.binary, profileArgs(tmpInput, tmpOutput))
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return Result{Message: fmt.Sprintf("conversion timed out after %s", c.timeout)}
		case errors.As(err, &exitErr):
			return Result{Message: ExtractErrorMessage(stderr)}
		default:
			return Result{Message: err.Error()}
		}
	}

	if err := fileutil.CopyFile(tmpOutput, outputPath); err != nil {
		return Result{Message: fmt.Sprintf("store output: %v", err)}
	}

	inputSize := fileutil.FileSize(inputPath)
	outputSize := fileutil.FileSize(outputPath)
	outputMB := float64(outputSize) / (1024 * 1024)
	ratio := 0.0
	if inputSize > 0 {
		ratio = (1 - float64(outputSize)/float64(inputSize)) * 100
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("size: %.2f MB (compression: %.1f%%)", outputMB, ratio),
	}
}
