package convert

import "strings"

// stderrTailLimit bounds the fallback excerpt when no diagnostic line
// matches.
const stderrTailLimit = 500

// unknownErrorMessage is the marker for an empty diagnostic stream.
const unknownErrorMessage = "unknown error"

// ExtractErrorMessage picks a human-readable failure reason out of the
// tool's diagnostic stream: the first line containing a case-insensitive
// "error" or "failed", else the last 500 characters of the stream, else a
// generic marker.
func ExtractErrorMessage(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") || strings.Contains(lower, "failed") {
			return strings.TrimSpace(line)
		}
	}
	if stderr == "" {
		return unknownErrorMessage
	}
	if len(stderr) > stderrTailLimit {
		return stderr[len(stderr)-stderrTailLimit:]
	}
	return stderr
}
