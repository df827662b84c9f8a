package transcript

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
)

// NormalizeText collapses whitespace runs to single spaces and removes
// whitespace immediately before , . ! ? ; and :.
func NormalizeText(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// CollapseSpaces collapses whitespace runs without touching punctuation.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// HypothesisText assembles scoring text from a transcript: each chunk's text,
// or its joined word texts when the text is blank, joined by spaces.
func HypothesisText(t Transcript) string {
	parts := make([]string, 0, len(t.Chunks))
	for _, c := range t.Chunks {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			words := make([]string, 0, len(c.Words))
			for _, w := range c.Words {
				words = append(words, w.Text)
			}
			text = strings.Join(words, " ")
		}
		parts = append(parts, text)
	}
	return CollapseSpaces(strings.Join(parts, " "))
}
