//go:build !cgo

package vad

import "fmt"

// NewWebRTCDetector is unavailable without cgo.
func NewWebRTCDetector(mode int) (Detector, error) {
	return nil, fmt.Errorf("%w: webrtcvad unavailable (cgo disabled)", ErrDetectorInit)
}
