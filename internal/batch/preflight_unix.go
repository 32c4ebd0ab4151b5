//go:build !windows

package batch

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func checkReadable(dir string) error {
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		return fmt.Errorf("directory %s is not readable: %w", dir, err)
	}
	return nil
}

func checkWritable(dir string) error {
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	return nil
}
