package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// DownloadURL points operators at prebuilt FFmpeg binaries when the tool is
// missing from the host.
const DownloadURL = "https://github.com/BtbN/FFmpeg-Builds/releases"

// ErrFFmpegNotFound indicates no usable ffmpeg binary exists on the host.
// Absence is terminal for a whole batch; there are no retries.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// wellKnownPaths lists install locations probed after the PATH lookup fails,
// in priority order.
var wellKnownPaths = []string{
	`C:\ffmpeg\bin\ffmpeg.exe`,
	`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
	`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
	"/usr/local/bin/ffmpeg",
	"/opt/homebrew/bin/ffmpeg",
}

// LocateFFmpeg resolves the ffmpeg executable: first a bare-name PATH lookup,
// then the well-known install locations. The first candidate that exists and
// is executable wins.
func LocateFFmpeg() (string, error) {
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}
	for _, candidate := range wellKnownPaths {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if isExecutable(info) {
			return candidate, nil
		}
	}
	return "", ErrFFmpegNotFound
}

// Requirement defines an external dependency crunch relies on.
type Requirement struct {
	Name        string
	Description string
	Locate      func() (string, error)
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Description string
	Command     string
	Available   bool
	Detail      string
}

// DefaultRequirements returns the external binaries a conversion run needs.
func DefaultRequirements() []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Description: "Transcodes each input file",
			Locate:      LocateFFmpeg,
		},
	}
}

// Check evaluates the provided requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
		}
		if req.Locate == nil {
			status.Detail = "no locator configured"
			results = append(results, status)
			continue
		}
		path, err := req.Locate()
		if err != nil {
			status.Detail = fmt.Sprintf("binary not found: %v", err)
			results = append(results, status)
			continue
		}
		status.Command = path
		status.Available = true
		results = append(results, status)
	}
	return results
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
