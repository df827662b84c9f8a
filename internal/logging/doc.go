// Package logging assembles structured slog loggers and formatting helpers used
// across vadscribe commands.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so stage code tags log lines with run IDs,
// source recordings, and stage names. NewNop gives tests a logger that cannot
// fail.
package logging
