package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateVAD(); err != nil {
		return err
	}
	if err := c.validateASR(); err != nil {
		return err
	}
	if err := c.validateAlign(); err != nil {
		return err
	}
	if c.Workers.Files < 1 {
		return errors.New("workers.files must be at least 1")
	}
	return nil
}

func (c *Config) validateAudio() error {
	switch c.Audio.TargetSampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return fmt.Errorf("audio.target_sample_rate must be one of 8000, 16000, 32000, 48000 (got %d)", c.Audio.TargetSampleRate)
	}
	if c.Audio.NormalizeDBFS > 0 {
		return errors.New("audio.normalize_dbfs must be zero or negative")
	}
	return nil
}

func (c *Config) validateVAD() error {
	if c.VAD.Mode < 0 || c.VAD.Mode > 3 {
		return fmt.Errorf("vad.mode must be between 0 and 3 (got %d)", c.VAD.Mode)
	}
	switch c.VAD.FrameMs {
	case 10, 20, 30:
	default:
		return fmt.Errorf("vad.frame_ms must be 10, 20, or 30 (got %d)", c.VAD.FrameMs)
	}
	if c.VAD.SmoothFrameMs < 0 {
		return errors.New("vad.smooth_frame_ms must be non-negative")
	}
	if c.VAD.PadSec < 0 {
		return errors.New("vad.pad_sec must be non-negative")
	}
	if c.VAD.MaxChunkSec <= 0 {
		return errors.New("vad.max_chunk_sec must be positive")
	}
	if c.VAD.MinSpeechSec < 0 {
		return errors.New("vad.min_speech_sec must be non-negative")
	}
	return nil
}

func (c *Config) validateASR() error {
	switch c.ASR.Backend {
	case BackendOpenAI, BackendWhisperX:
	default:
		return fmt.Errorf("asr.backend must be %q or %q (got %q)", BackendOpenAI, BackendWhisperX, c.ASR.Backend)
	}
	if c.ASR.Temperature < 0 || c.ASR.Temperature > 1 {
		return errors.New("asr.temperature must be between 0 and 1")
	}
	if c.ASR.MergeGapSec < 0 {
		return errors.New("asr.max_chunk_merge_gap_sec must be non-negative")
	}
	if c.ASR.MergeMaxSec <= 0 {
		return errors.New("asr.max_chunk_merge_duration_sec must be positive")
	}
	return nil
}

func (c *Config) validateAlign() error {
	if c.Align.Beam <= 0 {
		return errors.New("align.beam must be positive")
	}
	if c.Align.RetryBeam < c.Align.Beam {
		return errors.New("align.retry_beam must be at least align.beam")
	}
	return nil
}
