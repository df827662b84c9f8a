package services_test

import (
	"errors"
	"strings"
	"testing"

	"vadscribe/internal/runstore"
	"vadscribe/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "prepare", "volumedetect", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"prepare", "volumedetect", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureStatusMapping(t *testing.T) {
	missing := services.Wrap(services.ErrNotFound, "wer", "load", "reference missing", nil)
	if status := services.FailureStatus(missing); status != runstore.StatusSkipped {
		t.Fatalf("expected skipped for missing input, got %s", status)
	}

	toolErr := services.Wrap(services.ErrExternalTool, "chunk", "cut", "write failed", errors.New("io"))
	if status := services.FailureStatus(toolErr); status != runstore.StatusFailed {
		t.Fatalf("expected failed for tool error, got %s", status)
	}

	if status := services.FailureStatus(nil); status != runstore.StatusFailed {
		t.Fatalf("expected failed for nil error, got %s", status)
	}
}
