package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"’", "'",
)

// LabText normalizes transcript text for an aligner .lab file: NFC, curly
// quotes straightened, characters outside [A-Za-z0-9' -] replaced by spaces,
// whitespace collapsed, lower-cased.
func LabText(s string) string {
	if s == "" {
		return ""
	}
	s = quoteReplacer.Replace(norm.NFC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '\'' || r == ' ' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.ToLower(strings.Join(strings.Fields(b.String()), " "))
}

// BaseName returns the file name of p without directory or extension.
func BaseName(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DisplayName converts a file base or identifier such as "lecture_01-intro"
// into a title-cased label ("Lecture 01 Intro").
func DisplayName(value string) string {
	var cleaned strings.Builder
	prevSpace := false
	for _, r := range value {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	label := strings.TrimSpace(cleaned.String())
	if label == "" {
		return "Unknown"
	}
	return cases.Title(language.Und).String(label)
}
