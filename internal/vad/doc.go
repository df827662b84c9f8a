// Package vad turns 16-bit PCM audio into speech spans.
//
// The pipeline is FrameClassifier (per-frame speech decisions from a Detector),
// Smooth (majority vote over a sliding window), and BuildSpans (minimum-speech
// filtering, maximum-duration splitting, and edge padding). Only the classifier
// holds state; it owns one detector instance and must not be shared between
// goroutines. Construct one classifier per file or worker.
package vad
