package wer

import (
	"math"
	"math/rand"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Hello, World!", "hello world"},
		{"Don't  STOP\tnow", "don't stop now"},
		{"rock-n-roll 4ever", "rock n roll 4ever"},
		{"naïve café", "na ve caf"},
		{"   ", ""},
	}
	for _, tc := range cases {
		got := strings.Join(Tokenize(tc.in), " ")
		if got != tc.want {
			t.Errorf("Tokenize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestScoreConcreteScenario(t *testing.T) {
	r := Align([]string{"the", "cat", "sat"}, []string{"a", "cat", "sat", "down"})
	want := Report{Substitutions: 1, Deletions: 0, Insertions: 1, Matches: 2, ReferenceLength: 3}
	if r != want {
		t.Fatalf("Align = %+v, want %+v", r, want)
	}
	if math.Abs(r.WER()-2.0/3.0) > 1e-12 {
		t.Fatalf("WER = %v, want 2/3", r.WER())
	}
}

func TestScoreIdentity(t *testing.T) {
	r := Score("The quick brown fox.", "the quick, brown fox")
	if r.WER() != 0 || r.Matches != 4 {
		t.Fatalf("expected perfect match, got %+v", r)
	}
}

func TestScoreEmptyReference(t *testing.T) {
	r := Score("", "some words here")
	if r.WER() != 0 {
		t.Fatalf("expected WER 0 for empty reference, got %v", r.WER())
	}
	if r.Insertions != 3 || r.ReferenceLength != 0 {
		t.Fatalf("unexpected report %+v", r)
	}
}

func TestScoreEmptyHypothesis(t *testing.T) {
	r := Score("one two three", "")
	if r.Substitutions != 0 || r.Insertions != 0 || r.Deletions != 3 {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.WER() != 1 {
		t.Fatalf("expected WER 1, got %v", r.WER())
	}
}

func TestTieBreakPrefersSubstitutionThenDeletion(t *testing.T) {
	// "a b" vs "c": at the final cell substitution and deletion tie, so b->c
	// is a substitution and a is deleted.
	ops := Backtrace([]string{"a", "b"}, []string{"c"})
	got := make([]string, len(ops))
	for i, op := range ops {
		got[i] = op.String()
	}
	if strings.Join(got, "") != "DS" {
		t.Fatalf("unexpected alignment %v", got)
	}

	// "a" vs "b c": substitution ties insertion at the final cell.
	ops = Backtrace([]string{"a"}, []string{"b", "c"})
	got = got[:0]
	for _, op := range ops {
		got = append(got, op.String())
	}
	if strings.Join(got, "") != "IS" {
		t.Fatalf("unexpected alignment %v", got)
	}
}

func TestReportInvariant(t *testing.T) {
	vocab := []string{"a", "b", "c", "d"}
	rng := rand.New(rand.NewSource(42))
	pick := func() []string {
		out := make([]string, rng.Intn(12))
		for i := range out {
			out[i] = vocab[rng.Intn(len(vocab))]
		}
		return out
	}
	for n := 0; n < 200; n++ {
		ref, hyp := pick(), pick()
		r := Align(ref, hyp)
		if r.Substitutions+r.Deletions+r.Matches != r.ReferenceLength {
			t.Fatalf("S+D+M != N for %v vs %v: %+v", ref, hyp, r)
		}
		if r.Substitutions+r.Insertions+r.Matches != len(hyp) {
			t.Fatalf("S+I+M != H for %v vs %v: %+v", ref, hyp, r)
		}
	}
}
