package scoring

import "math"

// volatilityWindow is the number of trailing observations (current included)
// kept for rolling computations: the directional CoV penalty and the
// throughput trailing average. Tunable, not an invariant.
const volatilityWindow = 4

const (
	maxVolatilityPenalty = 40.0
	baseVolatilityScale  = 30.0
	directionalFloorMax  = 8.0
	directionalSwing     = 0.4
)

// VolatilityProfile parameterizes the directional CoV penalty for one kind of
// drifting quantity.
type VolatilityProfile struct {
	// ReferenceFloor is the minimum |mean delta| used as the CoV denominator,
	// so a series that barely moves cannot inflate the coefficient.
	ReferenceFloor float64
	// DirectionScale is the tanh steepness k: mean delta of k per week maps
	// to a directional factor of tanh(1).
	DirectionScale float64
	// IncreasingIsBad is true for forecast slip (growing slip worsens) and
	// false for throughput (growing throughput improves).
	IncreasingIsBad bool
}

// SlipVolatility tunes the penalty for forecast-slip history (days per week).
var SlipVolatility = VolatilityProfile{ReferenceFloor: 10, DirectionScale: 7, IncreasingIsBad: true}

// ThroughputVolatility tunes the penalty for throughput history (items per week).
var ThroughputVolatility = VolatilityProfile{ReferenceFloor: 1, DirectionScale: 3, IncreasingIsBad: false}

// VolatilityBreakdown records every intermediate of the penalty computation
// for the diagnostics bag.
type VolatilityBreakdown struct {
	Observations []float64 `json:"observations"`
	Deltas       []float64 `json:"deltas,omitempty"`
	MeanDelta    float64   `json:"mean_delta"`
	StdDelta     float64   `json:"std_delta"`
	Reference    float64   `json:"reference"`
	DeltaCoV     float64   `json:"delta_cov"`
	BasePenalty  float64   `json:"base_penalty"`
	DirFactor    float64   `json:"dir_factor"`
	Multiplier   float64   `json:"multiplier"`
	Floor        float64   `json:"floor"`
	Penalty      float64   `json:"penalty"`
}

// DirectionalCoVPenalty scores the erraticism and drift of a series of raw
// observations (oldest first). It penalizes movement, not level: the
// point-in-time metrics already capture absolute badness.
//
// Two orthogonal signals combine: the coefficient of variation of the
// consecutive deltas (chaotic movement) and a tanh-shaped directional
// multiplier on the mean delta (systematic drift). A steadily improving
// series is dampened; a steadily worsening one is amplified and additionally
// held above a directional floor even at zero erraticism.
func DirectionalCoVPenalty(history []float64, profile VolatilityProfile) VolatilityBreakdown {
	if len(history) > volatilityWindow {
		history = history[len(history)-volatilityWindow:]
	}

	breakdown := VolatilityBreakdown{Observations: history}

	// 1. Insufficient data: never penalize on startup.
	if len(history) < 2 {
		return breakdown
	}

	// 2. Consecutive differences of the sequence.
	deltas := consecutiveDeltas(history)
	breakdown.Deltas = deltas

	// 3. Mean and sample standard deviation of the deltas.
	breakdown.MeanDelta = mean(deltas)
	breakdown.StdDelta = sampleStdDev(deltas)

	// 4. Reference magnitude with a floor, so a near-zero mean delta cannot
	// inflate the coefficient when the series barely moves.
	breakdown.Reference = math.Max(math.Abs(breakdown.MeanDelta), profile.ReferenceFloor)

	// 5-6. Coefficient of variation on deltas, scaled to the base penalty.
	breakdown.DeltaCoV = clamp(breakdown.StdDelta/breakdown.Reference, 0, 2)
	breakdown.BasePenalty = clamp01(breakdown.DeltaCoV/0.5) * baseVolatilityScale

	// 7-8. Directional multiplier: worsening amplifies, improving dampens.
	breakdown.DirFactor = math.Tanh(breakdown.MeanDelta / profile.DirectionScale)
	if profile.IncreasingIsBad {
		breakdown.Multiplier = 1 + directionalSwing*breakdown.DirFactor
	} else {
		breakdown.Multiplier = 1 - directionalSwing*breakdown.DirFactor
	}

	// 9. Directional floor: a persistently worsening trend is never scored
	// as stable, even with zero erraticism.
	worsening := breakdown.DirFactor
	if !profile.IncreasingIsBad {
		worsening = -worsening
	}
	breakdown.Floor = clamp01(worsening) * directionalFloorMax

	// 10. Final penalty.
	breakdown.Penalty = clamp(math.Max(breakdown.BasePenalty*breakdown.Multiplier, breakdown.Floor), 0, maxVolatilityPenalty)

	return breakdown
}
