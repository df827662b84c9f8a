//go:build cgo

package vad

import (
	"fmt"

	"github.com/visvasity/webrtcvad"
)

type webrtcDetector struct {
	vad *webrtcvad.VAD
}

// NewWebRTCDetector creates a WebRTC VAD instance with the given mode,
// 0 (quality) through 3 (aggressive). The instance is freed by its finalizer.
func NewWebRTCDetector(mode int) (Detector, error) {
	inst, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDetectorInit, err)
	}
	if err := inst.SetMode(mode); err != nil {
		return nil, fmt.Errorf("%w: set mode %d: %w", ErrDetectorInit, mode, err)
	}
	return &webrtcDetector{vad: inst}, nil
}

func (d *webrtcDetector) Process(sampleRate int, frame []byte) (bool, error) {
	if !d.vad.ValidRateAndFrameLength(sampleRate, len(frame)/2) {
		return false, fmt.Errorf("%w: %d samples at %d Hz", ErrInvalidFrameLength, len(frame)/2, sampleRate)
	}
	return d.vad.Process(sampleRate, frame)
}
