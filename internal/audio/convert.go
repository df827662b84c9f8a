package audio

import "math"

// FloatToInt16 maps a sample in [-1, 1] to int16. Negative values scale by
// 32768 and positive values by 32767 so both ends of the range are reachable.
// Out-of-range input is clamped.
func FloatToInt16(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	if v < 0 {
		return int16(math.Round(v * 32768))
	}
	return int16(math.Round(v * 32767))
}
