// Package services defines shared utilities consumed by the batch stages and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source file names, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent per-file outcomes (failed vs skipped).
//
// Use these helpers when wiring new stage logic so per-file error isolation and
// observability stay uniform across prepare, chunk, asr, wer, and align.
package services
