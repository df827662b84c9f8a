package vad

import (
	"errors"
	"fmt"
)

// Detector is a stateful per-frame speech decision function. Frames are
// little-endian signed 16-bit PCM.
type Detector interface {
	Process(sampleRate int, frame []byte) (bool, error)
}

// DetectorFactory creates a detector configured with the given aggressiveness.
type DetectorFactory func(mode int) (Detector, error)

// ClassifierConfig fixes the detector configuration for the classifier's lifetime.
type ClassifierConfig struct {
	Mode       int
	SampleRate int
	FrameMs    int
}

// FrameSamples returns the number of samples per frame.
func (c ClassifierConfig) FrameSamples() int {
	return c.SampleRate * c.FrameMs / 1000
}

// FrameDuration returns the frame length in seconds.
func (c ClassifierConfig) FrameDuration() float64 {
	return float64(c.FrameMs) / 1000
}

// FrameClassifier owns a single detector instance and classifies frames in
// order. It is not safe for concurrent use.
type FrameClassifier struct {
	cfg      ClassifierConfig
	factory  DetectorFactory
	detector Detector
	buf      []byte
}

// NewFrameClassifier validates cfg and acquires a detector. A nil factory uses
// the WebRTC detector.
func NewFrameClassifier(cfg ClassifierConfig, factory DetectorFactory) (*FrameClassifier, error) {
	if cfg.Mode < 0 || cfg.Mode > 3 {
		return nil, fmt.Errorf("%w: mode %d out of range 0-3", ErrDetectorInit, cfg.Mode)
	}
	if !ValidRateAndFrame(cfg.SampleRate, cfg.FrameMs) {
		return nil, fmt.Errorf("%w: unsupported rate %d Hz with %d ms frames", ErrDetectorInit, cfg.SampleRate, cfg.FrameMs)
	}
	if factory == nil {
		factory = NewWebRTCDetector
	}
	c := &FrameClassifier{
		cfg:     cfg,
		factory: factory,
		buf:     make([]byte, cfg.FrameSamples()*2),
	}
	if err := c.acquire(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FrameClassifier) acquire() error {
	det, err := c.factory(c.cfg.Mode)
	if err != nil {
		if errors.Is(err, ErrDetectorInit) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrDetectorInit, err)
	}
	if det == nil {
		return fmt.Errorf("%w: factory returned no detector", ErrDetectorInit)
	}
	c.detector = det
	return nil
}

// Config returns the classifier configuration.
func (c *FrameClassifier) Config() ClassifierConfig {
	return c.cfg
}

// Classify reports whether frame contains speech. The frame must hold exactly
// FrameSamples samples.
func (c *FrameClassifier) Classify(frame []int16) (bool, error) {
	if c.detector == nil {
		return false, fmt.Errorf("%w: classifier closed", ErrDetectorInit)
	}
	want := c.cfg.FrameSamples()
	if len(frame) != want {
		return false, &FrameLengthError{Got: len(frame), Want: want}
	}
	for i, s := range frame {
		c.buf[2*i] = byte(uint16(s))
		c.buf[2*i+1] = byte(uint16(s) >> 8)
	}
	speech, err := c.detector.Process(c.cfg.SampleRate, c.buf)
	if err != nil {
		return false, fmt.Errorf("classify frame: %w", err)
	}
	return speech, nil
}

// ClassifyAll classifies frames in order and returns one flag per frame.
func (c *FrameClassifier) ClassifyAll(frames [][]int16) ([]bool, error) {
	flags := make([]bool, len(frames))
	for i, frame := range frames {
		speech, err := c.Classify(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		flags[i] = speech
	}
	return flags, nil
}

// Reset clears detector memory while keeping the configuration. The detector
// is replaced with a freshly configured instance.
func (c *FrameClassifier) Reset() error {
	c.release()
	return c.acquire()
}

// Close releases the detector. Classify fails after Close.
func (c *FrameClassifier) Close() error {
	c.release()
	return nil
}

func (c *FrameClassifier) release() {
	if closer, ok := c.detector.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	c.detector = nil
}

// Frames slices samples into frames of frameSamples, zero-padding the final
// partial frame. Empty input yields no frames.
func Frames(samples []int16, frameSamples int) [][]int16 {
	if frameSamples <= 0 || len(samples) == 0 {
		return nil
	}
	count := (len(samples) + frameSamples - 1) / frameSamples
	frames := make([][]int16, 0, count)
	for offset := 0; offset < len(samples); offset += frameSamples {
		end := offset + frameSamples
		if end <= len(samples) {
			frames = append(frames, samples[offset:end])
			continue
		}
		last := make([]int16, frameSamples)
		copy(last, samples[offset:])
		frames = append(frames, last)
	}
	return frames
}

// ValidRateAndFrame reports whether the detector supports the sample rate and
// frame length combination.
func ValidRateAndFrame(sampleRate, frameMs int) bool {
	switch sampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return false
	}
	switch frameMs {
	case 10, 20, 30:
		return true
	default:
		return false
	}
}
