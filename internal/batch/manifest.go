package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeFailedManifest writes the newline-delimited list of original input
// filenames whose output does not exist, 1-indexed by discovery order, to
// failed_files.txt inside the output directory. Nothing is written when every
// output exists; a prior manifest is overwritten otherwise.
func writeFailedManifest(outputDir string, tasks []Task) (int, error) {
	var lines []string
	for i, task := range tasks {
		if _, err := os.Stat(task.OutputPath); err != nil {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, filepath.Base(task.InputPath)))
		}
	}
	if len(lines) == 0 {
		return 0, nil
	}
	body := strings.Join(lines, "\n") + "\n"
	path := filepath.Join(outputDir, ManifestFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return 0, fmt.Errorf("write failed-file manifest: %w", err)
	}
	return len(lines), nil
}
