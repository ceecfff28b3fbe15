package scoring

import (
	"strconv"

	"github.com/rs/zerolog/log"
)

// Thresholds maps a threshold name to its numeric value. It is an immutable
// input to the engine; scoring never mutates it.
type Thresholds map[string]float64

// Default threshold values. A snapshot at or beyond a *_max threshold scores
// zero on that metric; a ratio at or below a *_floor threshold scores zero.
var defaultThresholds = Thresholds{
	"sched_var_floor":        -0.20, // pct-complete lag that zeroes the schedule metric
	"slip_days_max":          140,   // forecast slip that zeroes the slip metric
	"backlog_net_max":        50,    // net backlog growth over 4 weeks
	"req_churn_max":          15,    // requirement changes over 4 weeks
	"defect_escape_max":      0.15,  // escape rate over 4 weeks
	"crit_per_member_max":    2.0,   // open critical defects per team member
	"team_churn_ratio_max":   1.0,   // joiners+leavers over team size
	"blocked_days_max":       10,    // blocked days over 2 weeks
	"unplanned_ratio_max":    0.6,   // unplanned work share over 4 weeks
	"dependency_max":         15,    // external dependency count
	"cpi_floor":              0.70,  // CPI at or below this scores zero
	"spi_floor":              0.70,
	"milestone_floor":        0.50, // milestone hit rate at or below this scores zero
	"risk_load_max":          20,   // open + 2*high risks
	"throughput_ratio_floor": 0.50, // throughput vs trailing average
	"cycle_time_max":         30,   // days
	"wip_overage_max":        1.0,  // WIP overage as a fraction of the limit
	"aging_wip_max":          10,   // items older than the aging cutoff
}

// DefaultThresholds returns a fresh copy of the documented defaults. The copy
// keeps the process-wide map safe from caller mutation (override merging
// happens on the copy, never on the constant).
func DefaultThresholds() Thresholds {
	out := make(Thresholds, len(defaultThresholds))
	for k, v := range defaultThresholds {
		out[k] = v
	}
	return out
}

// ResolveThresholds merges string-valued overrides (query parameters, config
// file entries) over the defaults. Unknown keys and values that fail to parse
// as a number are ignored per-key, never fatal.
func ResolveThresholds(overrides map[string]string) Thresholds {
	return DefaultThresholds().With(overrides)
}

// With returns a copy of t with parseable overrides applied. The receiver is
// never mutated, so a process-wide threshold set can safely absorb
// per-request overrides.
func (t Thresholds) With(overrides map[string]string) Thresholds {
	out := make(Thresholds, len(t))
	for k, v := range t {
		out[k] = v
	}
	for key, raw := range overrides {
		if _, known := out[key]; !known {
			continue
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Debug().Str("key", key).Str("value", raw).Msg("Ignoring non-numeric threshold override")
			continue
		}
		out[key] = val
	}
	return out
}

func (t Thresholds) value(key string) float64 {
	if v, ok := t[key]; ok {
		return v
	}
	return defaultThresholds[key]
}
