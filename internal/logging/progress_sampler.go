package logging

import "strings"

// ProgressSampler thins per-file progress logs to one line per percentage
// bucket, restarting whenever the stage label changes.
type ProgressSampler struct {
	step   float64
	stage  string
	bucket int
}

// NewProgressSampler emits once per step percent; step <= 0 means 10.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step, bucket: -1}
}

// ShouldLog reports whether done of total in stage starts a new bucket.
// Unknown totals and nil samplers always log.
func (s *ProgressSampler) ShouldLog(done, total int, stage string) bool {
	if s == nil || total <= 0 {
		return true
	}
	changed := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage, s.bucket, changed = stage, -1, true
	}
	b := int(float64(done) * 100 / float64(total) / s.step)
	if b <= s.bucket {
		return changed
	}
	s.bucket = b
	return true
}
