package outline

import (
	"regexp"
	"strings"
)

const (
	defaultBaseName = "Presentation"
	maxBaseNameLen  = 50
)

var (
	unsafeChars    = regexp.MustCompile(`[^\w \-]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Filename derives a filesystem-safe base name from the presentation title:
// characters outside word/space/hyphen classes are stripped, whitespace runs
// collapse to single underscores, and the result is truncated to 50 bytes.
// Empty or all-punctuation titles yield "Presentation".
func Filename(title string) string {
	base := unsafeChars.ReplaceAllString(title, "")
	base = strings.TrimSpace(base)
	base = whitespaceRuns.ReplaceAllString(base, "_")
	if len(base) > maxBaseNameLen {
		base = base[:maxBaseNameLen]
	}
	if base == "" {
		return defaultBaseName
	}
	return base
}
