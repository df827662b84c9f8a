package recognize

import (
	"math"
	"testing"
)

func TestBuildUnitOffsetsAndRounds(t *testing.T) {
	words := []RawWord{
		{Text: " hello ", Start: ptr(0.1234), End: ptr(0.5)},
		{Text: "world", Start: ptr(0.6), End: ptr(0.98765)},
	}
	u := BuildUnit("  Hello ,  world. ", words, 10)
	if u == nil {
		t.Fatal("expected a unit")
	}
	if u.Start != 10.123 || u.End != 10.988 {
		t.Fatalf("bounds = %v..%v", u.Start, u.End)
	}
	if u.Text != "Hello, world." {
		t.Fatalf("text = %q", u.Text)
	}
	if u.Words[0].Text != "hello" || u.Words[1].Start != 10.6 {
		t.Fatalf("unexpected words: %+v", u.Words)
	}
}

func TestBuildUnitDropsBadWords(t *testing.T) {
	words := []RawWord{
		{Text: "missing", Start: nil, End: ptr(1)},
		{Text: "   ", Start: ptr(0), End: ptr(0.2)},
		{Text: "backwards", Start: ptr(0.5), End: ptr(0.4)},
		{Text: "nan", Start: ptr(math.NaN()), End: ptr(0.4)},
		{Text: "ok", Start: ptr(0.7), End: ptr(0.9)},
	}
	u := BuildUnit("", words, 0)
	if u == nil || len(u.Words) != 1 || u.Words[0].Text != "ok" {
		t.Fatalf("unexpected unit: %+v", u)
	}
	if u.Text != "ok" {
		t.Fatalf("expected joined-word fallback text, got %q", u.Text)
	}
}

func TestBuildUnitWithoutWordsIsNil(t *testing.T) {
	if u := BuildUnit("some text", nil, 3); u != nil {
		t.Fatalf("expected nil, got %+v", u)
	}
}
