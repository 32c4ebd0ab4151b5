//go:build windows

package batch

import (
	"fmt"
	"os"
)

// Windows has no faccessat equivalent worth modelling here; a stat that
// confirms the directory exists is the useful part of the check.
func checkReadable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory %s is not readable: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func checkWritable(dir string) error {
	return checkReadable(dir)
}
