package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"vadscribe/internal/runstore"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestRunStatusLabel(t *testing.T) {
	if got := runStatusLabel(runstore.StatusCompleted, false); got != "Completed" {
		t.Fatalf("runStatusLabel = %q", got)
	}
	if got := runStatusLabel(runstore.StatusFailed, true); got != ansiRed+"Failed"+ansiReset {
		t.Fatalf("runStatusLabel colored = %q", got)
	}
}

func TestRenderTableWithFooter(t *testing.T) {
	got := renderTable(tableSpec{
		Headers: []string{"Transcript", "WER"},
		Rows:    [][]string{{"a", "10.00%"}, {"b"}},
		Footer:  []string{"Corpus", "5.00%"},
		Aligns:  []columnAlignment{alignLeft, alignRight},
	}, false)
	for _, want := range []string{"Transcript", "a", "10.00%", "Corpus", "5.00%"} {
		if !strings.Contains(got, want) {
			t.Fatalf("table missing %q:\n%s", want, got)
		}
	}
	if renderTable(tableSpec{}, false) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestFormatWER(t *testing.T) {
	if got := formatWER(0.125); got != "12.50%" {
		t.Fatalf("formatWER = %q", got)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"short":            "********",
		"sk-1234567890abc": "sk-1...0abc",
	}
	for in, want := range cases {
		if got := maskSecret(in); got != want {
			t.Fatalf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
