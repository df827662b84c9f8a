package testsupport

import (
	"path/filepath"
	"testing"

	"vadscribe/internal/audio"
	"vadscribe/internal/vad"
)

// Region is a stretch of synthetic audio; Speech regions carry a non-zero
// amplitude that SampleDetector reports as speech.
type Region struct {
	Seconds float64
	Speech  bool
}

// Samples renders regions at rate Hz. Speech regions are a constant 1000.
func Samples(rate int, regions ...Region) []int16 {
	var out []int16
	for _, r := range regions {
		n := int(r.Seconds * float64(rate))
		value := int16(0)
		if r.Speech {
			value = 1000
		}
		for i := 0; i < n; i++ {
			out = append(out, value)
		}
	}
	return out
}

// WriteWAV writes a 16-bit mono WAV built from regions and returns its path.
func WriteWAV(t testing.TB, dir, name string, rate int, regions ...Region) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := audio.WriteWAV(path, rate, Samples(rate, regions...)); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
	return path
}

// SampleDetector classifies a frame as speech when its first sample is
// non-zero. It stands in for the WebRTC detector so tests do not need cgo.
type SampleDetector struct{}

// Process implements vad.Detector.
func (SampleDetector) Process(_ int, frame []byte) (bool, error) {
	if len(frame) < 2 {
		return false, nil
	}
	return frame[0] != 0 || frame[1] != 0, nil
}

// SampleDetectorFactory is a vad.DetectorFactory returning SampleDetector.
func SampleDetectorFactory(int) (vad.Detector, error) {
	return SampleDetector{}, nil
}
