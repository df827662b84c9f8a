// Package wer scores hypothesis text against reference text.
//
// Tokens are lower-cased runs of [a-z0-9']. Alignment is the classic
// edit-distance table with a fixed tie-break (substitution or match, then
// deletion, then insertion); the backtrace attributes every step to exactly
// one counter, so S+D+M always equals the reference length. WER with an empty
// reference is zero.
package wer
