package wer

import "strings"

// Tokenize lower-cases s, treats every character outside [a-z0-9'] as a
// separator, and returns the remaining tokens. Empty input yields nil.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			return false
		default:
			return true
		}
	})
}
