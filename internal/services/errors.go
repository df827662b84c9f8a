package services

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"vadscribe/internal/runstore"
)

// Markers classify per-file failures. Stages attach exactly one with Wrap.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap tags err with marker and prefixes "stage: operation: message", skipping
// blank parts. A nil marker means ErrTransient; a nil err yields a leaf error.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinDetail(stage, operation, message)
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// FailureStatus maps a per-file error to its run ledger outcome. A missing
// input is skipped; anything else failed.
func FailureStatus(err error) runstore.Status {
	if errors.Is(err, ErrNotFound) {
		return runstore.StatusSkipped
	}
	return runstore.StatusFailed
}

func joinDetail(parts ...string) string {
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	parts = slices.DeleteFunc(parts, func(p string) bool { return p == "" })
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
