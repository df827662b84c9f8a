// Package align prepares a forced-alignment corpus from chunk WAVs and their
// transcripts, runs the Montreal Forced Aligner over it, and converts the
// resulting TextGrids into word/phone timing JSON.
package align
