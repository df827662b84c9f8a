package vad

import (
	"errors"
	"testing"
)

// energyDetector marks a frame as speech when its first sample is non-zero.
type energyDetector struct {
	mode   int
	calls  int
	closed bool
}

func (d *energyDetector) Process(sampleRate int, frame []byte) (bool, error) {
	d.calls++
	sample := int16(uint16(frame[0]) | uint16(frame[1])<<8)
	return sample != 0, nil
}

func (d *energyDetector) Close() error {
	d.closed = true
	return nil
}

func testConfig() ClassifierConfig {
	return ClassifierConfig{Mode: 2, SampleRate: 16000, FrameMs: 10}
}

func TestClassifierRejectsWrongFrameLength(t *testing.T) {
	c, err := NewFrameClassifier(testConfig(), func(mode int) (Detector, error) { return &energyDetector{mode: mode}, nil })
	if err != nil {
		t.Fatalf("NewFrameClassifier: %v", err)
	}
	_, err = c.Classify(make([]int16, 159))
	if !errors.Is(err, ErrInvalidFrameLength) {
		t.Fatalf("expected ErrInvalidFrameLength, got %v", err)
	}
	var lengthErr *FrameLengthError
	if !errors.As(err, &lengthErr) || lengthErr.Got != 159 || lengthErr.Want != 160 {
		t.Fatalf("unexpected frame length error %#v", lengthErr)
	}
}

func TestClassifierEncodesLittleEndian(t *testing.T) {
	c, err := NewFrameClassifier(testConfig(), func(mode int) (Detector, error) { return &energyDetector{mode: mode}, nil })
	if err != nil {
		t.Fatalf("NewFrameClassifier: %v", err)
	}
	frames := [][]int16{make([]int16, 160), make([]int16, 160), make([]int16, 160)}
	frames[1][0] = -300
	flags, err := c.ClassifyAll(frames)
	if err != nil {
		t.Fatalf("ClassifyAll: %v", err)
	}
	want := []bool{false, true, false}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("flags = %v, want %v", flags, want)
		}
	}
}

func TestClassifierResetRecreatesDetector(t *testing.T) {
	var created []*energyDetector
	factory := func(mode int) (Detector, error) {
		d := &energyDetector{mode: mode}
		created = append(created, d)
		return d, nil
	}
	c, err := NewFrameClassifier(testConfig(), factory)
	if err != nil {
		t.Fatalf("NewFrameClassifier: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 detectors, got %d", len(created))
	}
	if !created[0].closed {
		t.Fatal("expected first detector released on reset")
	}
	if created[1].mode != 2 {
		t.Fatalf("expected mode preserved across reset, got %d", created[1].mode)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.Classify(make([]int16, 160)); !errors.Is(err, ErrDetectorInit) {
		t.Fatalf("expected closed classifier error, got %v", err)
	}
}

func TestNewFrameClassifierInitErrors(t *testing.T) {
	failing := func(int) (Detector, error) { return nil, errors.New("no memory") }
	if _, err := NewFrameClassifier(testConfig(), failing); !errors.Is(err, ErrDetectorInit) {
		t.Fatalf("expected ErrDetectorInit from factory failure, got %v", err)
	}
	bad := testConfig()
	bad.FrameMs = 25
	if _, err := NewFrameClassifier(bad, failing); !errors.Is(err, ErrDetectorInit) {
		t.Fatalf("expected ErrDetectorInit for bad frame size, got %v", err)
	}
	bad = testConfig()
	bad.Mode = 5
	if _, err := NewFrameClassifier(bad, failing); !errors.Is(err, ErrDetectorInit) {
		t.Fatalf("expected ErrDetectorInit for bad mode, got %v", err)
	}
}

func TestFramesZeroPadsFinalFrame(t *testing.T) {
	samples := make([]int16, 350)
	for i := range samples {
		samples[i] = 1
	}
	frames := Frames(samples, 160)
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	last := frames[2]
	if len(last) != 160 {
		t.Fatalf("expected padded frame of 160, got %d", len(last))
	}
	if last[29] != 1 || last[30] != 0 || last[159] != 0 {
		t.Fatalf("unexpected padding in final frame: %v", last[25:35])
	}
	if Frames(nil, 160) != nil {
		t.Fatal("expected no frames for empty input")
	}
}

func TestConfigDerivedSizes(t *testing.T) {
	cfg := ClassifierConfig{SampleRate: 16000, FrameMs: 30}
	if cfg.FrameSamples() != 480 {
		t.Fatalf("FrameSamples = %d", cfg.FrameSamples())
	}
	if cfg.FrameDuration() != 0.03 {
		t.Fatalf("FrameDuration = %v", cfg.FrameDuration())
	}
}
