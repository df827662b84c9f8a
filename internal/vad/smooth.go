package vad

// WindowForFrameMs maps the configured smoothing frame length to a majority
// window size: 30 ms -> 3 frames, 20 ms -> 2, anything else -> 1 (no smoothing).
func WindowForFrameMs(ms int) int {
	switch ms {
	case 30:
		return 3
	case 20:
		return 2
	default:
		return 1
	}
}

// Smooth applies a majority vote over a symmetric window of half-width
// window/2, truncated at the sequence edges. A window of 1 or less returns a
// copy of flags.
func Smooth(flags []bool, window int) []bool {
	out := make([]bool, len(flags))
	if window <= 1 {
		copy(out, flags)
		return out
	}
	half := window / 2

	// prefix[i] is the number of true flags in flags[:i].
	prefix := make([]int, len(flags)+1)
	for i, f := range flags {
		prefix[i+1] = prefix[i]
		if f {
			prefix[i+1]++
		}
	}
	for i := range flags {
		lo := max(0, i-half)
		hi := min(len(flags)-1, i+half)
		total := hi - lo + 1
		count := prefix[hi+1] - prefix[lo]
		out[i] = count >= (total+1)/2
	}
	return out
}
