package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"
)

// stripQuotes trims whitespace and one pair of surrounding quotes, the shape
// Windows Explorer produces when a path is copied or dragged into a console.
func stripQuotes(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if first == last && (first == '"' || first == '\'') {
			trimmed = trimmed[1 : len(trimmed)-1]
		}
	}
	return strings.TrimSpace(trimmed)
}

func isInteractive(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pauseBeforeExit keeps a double-clicked console window open on Windows until
// the operator has read the report. No-op elsewhere and for piped stdin.
func pauseBeforeExit(in io.Reader, out io.Writer) {
	if runtime.GOOS != "windows" || !isInteractive(in) {
		return
	}
	fmt.Fprint(out, "Press Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
