package textutil

import (
	"strings"
	"unicode/utf8"
)

// maxFileNameLength caps sanitized names to stay clear of filesystem
// path-length limits. Truncation is a plain prefix cut, not extension-aware.
const maxFileNameLength = 150

// fileNameReplacer removes characters that are illegal in path components on
// common filesystems.
var fileNameReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	":", "",
	"\"", "",
	"/", "",
	"\\", "",
	"|", "",
	"?", "",
	"*", "",
)

// SanitizeFileName removes filesystem-unsafe characters from a filename and
// truncates the result to 150 characters. The cap counts runes, never
// splitting a multi-byte character. Two distinct inputs can sanitize to the
// same name; callers that derive output paths from the result will then
// overwrite one another.
func SanitizeFileName(name string) string {
	clean := fileNameReplacer.Replace(name)
	if utf8.RuneCountInString(clean) > maxFileNameLength {
		runes := []rune(clean)
		clean = string(runes[:maxFileNameLength])
	}
	return clean
}
