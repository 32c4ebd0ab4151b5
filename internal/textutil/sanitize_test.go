package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFileNameRemovesUnsafeCharacters(t *testing.T) {
	cases := map[string]string{
		"plain.mp4":                  "plain.mp4",
		`a<b>c:d"e/f\g|h?i*.mp4`:     "abcdefghi.mp4",
		"What? Is: This*.mp4":        "What Is This.mp4",
		"":                           "",
		"trailing spaces  .mp4":      "trailing spaces  .mp4",
		`"quoted".mp4`:               "quoted.mp4",
		"nested/dir\\component.mp4":  "nesteddircomponent.mp4",
		"unicode preserved 日本.mp4":   "unicode preserved 日本.mp4",
	}

	for input, want := range cases {
		got := SanitizeFileName(input)
		if got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeFileNameNeverEmitsUnsafeCharacters(t *testing.T) {
	inputs := []string{
		strings.Repeat(`<>:"/\|?*`, 40),
		"mixed <ok> " + strings.Repeat("?", 10) + ".mp4",
		"already clean.mp4",
	}
	for _, input := range inputs {
		got := SanitizeFileName(input)
		if strings.ContainsAny(got, `<>:"/\|?*`) {
			t.Errorf("SanitizeFileName(%q) = %q still contains unsafe characters", input, got)
		}
	}
}

func TestSanitizeFileNameTruncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", 300) + ".mp4"
	got := SanitizeFileName(long)
	if utf8.RuneCountInString(got) != 150 {
		t.Fatalf("expected 150 characters, got %d", utf8.RuneCountInString(got))
	}
	if got != strings.Repeat("a", 150) {
		t.Fatalf("expected prefix truncation, got %q", got)
	}

	exact := strings.Repeat("b", 150)
	if SanitizeFileName(exact) != exact {
		t.Fatalf("expected 150-character name to pass through unchanged")
	}
}

func TestSanitizeFileNameCountsRunesNotBytes(t *testing.T) {
	// 76 characters but well over 150 bytes; must pass through unchanged.
	short := "a" + strings.Repeat("世", 75)
	if got := SanitizeFileName(short); got != short {
		t.Fatalf("expected multi-byte name under the cap to pass through, got %q", got)
	}

	long := strings.Repeat("世", 200)
	got := SanitizeFileName(long)
	if utf8.RuneCountInString(got) != 150 {
		t.Fatalf("expected 150 characters, got %d", utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("世", 150) {
		t.Fatalf("expected whole-character prefix truncation, got %q", got)
	}
}
