package services

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithSource(ctx, "lecture.wav")
	ctx = WithStage(ctx, "chunk")

	if id, ok := RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id %q ok=%v", id, ok)
	}
	if src, ok := SourceFromContext(ctx); !ok || src != "lecture.wav" {
		t.Fatalf("unexpected source %q ok=%v", src, ok)
	}
	if stage, ok := StageFromContext(ctx); !ok || stage != "chunk" {
		t.Fatalf("unexpected stage %q ok=%v", stage, ok)
	}
}

func TestContextIgnoresEmptyValues(t *testing.T) {
	ctx := context.Background()
	if WithRunID(ctx, "") != ctx || WithSource(ctx, "") != ctx || WithStage(ctx, "") != ctx {
		t.Fatal("expected empty values to return the original context")
	}
	if _, ok := RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
}
