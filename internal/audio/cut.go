package audio

import "math"

// Cut returns the samples covering [start, end) seconds. The range is clamped
// to the clip, so padded spans that run past the end of the recording are
// truncated. An empty range yields an empty slice.
func (c Clip) Cut(start, end float64) []int16 {
	if c.SampleRate <= 0 || len(c.Samples) == 0 {
		return []int16{}
	}
	from := clampIndex(int(math.Round(start*float64(c.SampleRate))), len(c.Samples))
	to := clampIndex(int(math.Round(end*float64(c.SampleRate))), len(c.Samples))
	if to <= from {
		return []int16{}
	}
	out := make([]int16, to-from)
	copy(out, c.Samples[from:to])
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
