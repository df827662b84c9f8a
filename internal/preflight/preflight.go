package preflight

import (
	"vadscribe/internal/config"
	"vadscribe/internal/vad"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

// Stage names the batch stage a RunAll call gates.
type Stage string

const (
	StagePrepare Stage = "prepare"
	StageChunk   Stage = "chunk"
	StageASR     Stage = "asr"
	StageAlign   Stage = "align"
	StageAll     Stage = "all"
)

// RunAll executes the offline checks relevant to stage. Network checks are
// left to the doctor command. A nil detectors uses the WebRTC detector.
func RunAll(cfg *config.Config, stage Stage, detectors vad.DetectorFactory) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	want := func(s Stage) bool { return stage == StageAll || stage == s }

	if want(StagePrepare) {
		results = append(results, CheckReadableDirectory("Raw directory", cfg.Paths.RawDir))
		results = append(results, CheckDirectoryAccess("Processed directory", cfg.Paths.ProcessedDir))
		results = append(results, binaryResult(cfg.FFmpegBinary(), "Required to decode and normalize audio", false))
	}
	if want(StageChunk) {
		results = append(results, CheckDirectoryAccess("Chunks directory", cfg.Paths.ChunksDir))
		results = append(results, CheckDetector(cfg, detectors))
	}
	if want(StageASR) {
		results = append(results, CheckASRConfig(cfg))
		if cfg.ASR.Backend == config.BackendWhisperX {
			results = append(results, binaryResult("uvx", "Required for WhisperX transcription", false))
		}
	}
	if want(StageAlign) {
		results = append(results, CheckDirectoryAccess("Align directory", cfg.Paths.AlignDir))
		results = append(results, binaryResult(cfg.Align.MFABinary, "Required for forced alignment", false))
	}
	return results
}
