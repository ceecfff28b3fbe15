package scoring

// Metric normalization: every raw signal maps to [0,1] where 1 is healthy.
// All mappings are linear and hard-clamped; values beyond the defined range
// saturate instead of extrapolating.

// normalizeRatio maps a performance ratio to [0,1]: 0 at the floor threshold,
// 1 at parity or above. Used for schedule variance, CPI, SPI and milestone
// hit rate.
func normalizeRatio(value, floor float64) float64 {
	if floor >= 1 {
		// Degenerate floor: anything at or above parity is healthy.
		if value >= 1 {
			return 1
		}
		return 0
	}
	return clamp01((value - floor) / (1 - floor))
}

// normalizePenalty maps a badness quantity to [0,1]: 1 at zero badness, 0 at
// or beyond the max threshold. Negative badness (e.g. shrinking backlog)
// counts as zero.
func normalizePenalty(value, max float64) float64 {
	if max <= 0 {
		max = 0.01
	}
	bad := value
	if bad < 0 {
		bad = 0
	}
	return clamp01(1 - bad/max)
}

// throughputRatio relates current throughput to its trailing rolling average
// (window includes the current observation). A near-zero average is floored
// so a quiet history cannot produce an unbounded ratio.
func throughputRatio(history []float64) float64 {
	if len(history) == 0 {
		return 1
	}
	window := history
	if len(window) > volatilityWindow {
		window = window[len(window)-volatilityWindow:]
	}
	avg := mean(window)
	if avg < 0.01 {
		avg = 0.01
	}
	return window[len(window)-1] / avg
}
