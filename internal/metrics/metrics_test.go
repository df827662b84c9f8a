package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTextfile(t *testing.T) {
	rec := New()
	rec.File("chunk", StatusOK, 2*time.Second)
	rec.File("chunk", StatusFailed, time.Second)
	rec.Spans(4)
	rec.Chunks(2)
	rec.UnitsRejected(1)
	rec.Finish("chunk", time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "textfile", "vadscribe.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`vadscribe_files_total{stage="chunk",status="ok"} 1`,
		`vadscribe_files_total{stage="chunk",status="failed"} 1`,
		`vadscribe_spans_total 4`,
		`vadscribe_chunks_total 2`,
		`vadscribe_units_rejected_total 1`,
		`vadscribe_last_run_timestamp_seconds{command="chunk"} 1.7e+09`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("textfile missing %q:\n%s", want, out)
		}
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.File("asr", StatusOK, time.Second)
	rec.Spans(3)
	rec.RecognizeFailed()
	if err := rec.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
}

func TestEmptyPathSkipsWrite(t *testing.T) {
	if err := New().WriteTextfile(""); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
}
