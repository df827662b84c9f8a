package textutil

import "testing"

func TestLabText(t *testing.T) {
	cases := map[string]string{
		"":                               "",
		"Hello, World!":                  "hello world",
		"“Don’t”  stop":   "don't stop",
		"Café au lait":             "caf au lait",
		"well-known   tab\tseparated":    "well-known tab separated",
		"Numbers 42 and 7.5%":            "numbers 42 and 7 5",
		"  leading and trailing  ":       "leading and trailing",
	}
	for in, want := range cases {
		if got := LabText(in); got != want {
			t.Errorf("LabText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBaseName(t *testing.T) {
	if got := BaseName("/data/chunks/talk_chunk_001.wav"); got != "talk_chunk_001" {
		t.Fatalf("BaseName = %q", got)
	}
	if got := BaseName("talk.transcript.json"); got != "talk.transcript" {
		t.Fatalf("BaseName = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("lecture_01-intro"); got != "Lecture 01 Intro" {
		t.Fatalf("DisplayName = %q", got)
	}
	if got := DisplayName("__"); got != "Unknown" {
		t.Fatalf("DisplayName = %q", got)
	}
}
