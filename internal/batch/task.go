package batch

import (
	"path/filepath"
	"strings"

	"crunch/internal/textutil"
)

// Fixed names the orchestrator works with. The output directory name and
// extensions are design constants, not user-configurable.
const (
	DefaultOutputDirName = "MPEG_360p_Output"
	InputExtension       = ".mp4"
	OutputExtension      = ".mpeg"
	ManifestFileName     = "failed_files.txt"
)

// Task pairs one discovered input file with its derived output path.
// Immutable once built.
type Task struct {
	InputPath  string
	OutputPath string
}

// newTask derives the output path from the sanitized input filename with the
// extension swapped. The mapping is deterministic; inputs whose sanitized
// names collide map to the same output and overwrite one another.
func newTask(inputPath, outputDir string) Task {
	safeName := textutil.SanitizeFileName(filepath.Base(inputPath))
	stem := strings.TrimSuffix(safeName, filepath.Ext(safeName))
	return Task{
		InputPath:  inputPath,
		OutputPath: filepath.Join(outputDir, stem+OutputExtension),
	}
}

func makeTasks(inputs []string, outputDir string) []Task {
	tasks := make([]Task, 0, len(inputs))
	for _, input := range inputs {
		tasks = append(tasks, newTask(input, outputDir))
	}
	return tasks
}
