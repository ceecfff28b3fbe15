package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// TopDetractor returns the metric that lost the most points to
// underperformance this week (largest max_contribution − contribution gap)
// together with that gap. Ties resolve alphabetically so the result is
// deterministic. Returns ok=false when no metric lost any points.
func TopDetractor(rec ScoreRecord) (label string, gap float64, ok bool) {
	labels := make([]string, 0, len(rec.MaxContributions))
	for l := range rec.MaxContributions {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	for _, l := range labels {
		g := rec.MaxContributions[l] - rec.Contributions[l]
		if g > gap {
			label, gap, ok = l, g, true
		}
	}
	return label, gap, ok
}

// topPerformer mirrors TopDetractor for the metric retaining the largest
// share of its allocated points.
func topPerformer(rec ScoreRecord) (string, bool) {
	labels := make([]string, 0, len(rec.Contributions))
	for l := range rec.Contributions {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	best := ""
	bestPts := -1.0
	for _, l := range labels {
		if rec.Contributions[l] > bestPts {
			best, bestPts = l, rec.Contributions[l]
		}
	}
	return best, best != ""
}

// ComposeNarrative renders a deterministic multi-clause explanation of a
// finished ScoreRecord. Pure presentation: it introduces no numbers that are
// not already in the record.
func ComposeNarrative(rec ScoreRecord) string {
	var clauses []string

	switch {
	case rec.HealthScore >= 75:
		clauses = append(clauses, fmt.Sprintf("%s is in good health at %.1f", rec.ProjectName, rec.HealthScore))
	case rec.HealthScore >= 50:
		clauses = append(clauses, fmt.Sprintf("%s shows moderate health at %.1f", rec.ProjectName, rec.HealthScore))
	default:
		clauses = append(clauses, fmt.Sprintf("%s is in critical condition at %.1f", rec.ProjectName, rec.HealthScore))
	}

	if math.Abs(rec.TrendDelta) >= 1 {
		if rec.TrendDelta > 0 {
			clauses = append(clauses, fmt.Sprintf("trending up %.1f points week over week", rec.TrendDelta))
		} else {
			clauses = append(clauses, fmt.Sprintf("trending down %.1f points week over week", -rec.TrendDelta))
		}
	}

	if rec.Raw.Framework == Kanban {
		clauses = append(clauses, kanbanClauses(rec)...)
	} else {
		clauses = append(clauses, plannedClauses(rec)...)
	}

	clauses = append(clauses, confidenceClause(rec))

	if label, gap, ok := TopDetractor(rec); ok && gap >= 1 {
		clauses = append(clauses, fmt.Sprintf("the largest drag on the score is %s (%.1f points below its ceiling)", label, gap))
	} else if label, ok := topPerformer(rec); ok {
		clauses = append(clauses, fmt.Sprintf("%s is the strongest contributor", label))
	}

	return strings.Join(clauses, "; ") + "."
}

func plannedClauses(rec ScoreRecord) []string {
	var clauses []string
	raw := rec.Raw

	if raw.SchedVarPct < 0 {
		clauses = append(clauses, fmt.Sprintf("progress is %.1f%% behind plan", -raw.SchedVarPct))
	} else if raw.SchedVarPct > 0 {
		clauses = append(clauses, fmt.Sprintf("progress is %.1f%% ahead of plan", raw.SchedVarPct))
	}

	if raw.SlipDays != nil && *raw.SlipDays > 0 {
		clauses = append(clauses, fmt.Sprintf("the forecast end date has slipped %d days", int(*raw.SlipDays)))
	}
	if raw.CPI != nil {
		clauses = append(clauses, fmt.Sprintf("cost performance index stands at %.2f", *raw.CPI))
	}
	if raw.MilestoneRate != nil {
		clauses = append(clauses, fmt.Sprintf("milestone hit rate is %.0f%%", *raw.MilestoneRate*100))
	}
	if raw.RiskLoad != nil && *raw.RiskLoad > 0 {
		clauses = append(clauses, fmt.Sprintf("risk exposure load is %.0f", *raw.RiskLoad))
	}

	return clauses
}

func kanbanClauses(rec ScoreRecord) []string {
	var clauses []string
	raw := rec.Raw

	if raw.ThroughputRatio != nil {
		if *raw.ThroughputRatio < 1 {
			clauses = append(clauses, fmt.Sprintf("throughput is running at %.0f%% of its trailing average", *raw.ThroughputRatio*100))
		} else {
			clauses = append(clauses, "throughput is at or above its trailing average")
		}
	}
	if norm, ok := raw.Normalized[MetricCycleTime]; ok && norm < 1 {
		clauses = append(clauses, "cycle times are elevated")
	}
	if norm, ok := raw.Normalized[MetricWIP]; ok && norm < 1 {
		clauses = append(clauses, "WIP is above its limit")
	}
	if raw.CPI != nil {
		clauses = append(clauses, fmt.Sprintf("cost performance index stands at %.2f", *raw.CPI))
	}

	return clauses
}

func confidenceClause(rec ScoreRecord) string {
	drivers := confidenceDrivers(rec)
	switch {
	case rec.ConfidenceScore >= 75:
		return fmt.Sprintf("forecast confidence is solid at %.1f", rec.ConfidenceScore)
	case rec.ConfidenceScore >= 50:
		if len(drivers) > 0 {
			return fmt.Sprintf("forecast confidence is shaky at %.1f (driven by %s)", rec.ConfidenceScore, strings.Join(drivers, ", "))
		}
		return fmt.Sprintf("forecast confidence is shaky at %.1f", rec.ConfidenceScore)
	default:
		if len(drivers) > 0 {
			return fmt.Sprintf("forecast confidence is low at %.1f (driven by %s)", rec.ConfidenceScore, strings.Join(drivers, ", "))
		}
		return fmt.Sprintf("forecast confidence is low at %.1f", rec.ConfidenceScore)
	}
}

// confidenceDrivers labels the penalties that actually bit, largest first.
func confidenceDrivers(rec ScoreRecord) []string {
	type driver struct {
		label   string
		penalty float64
	}
	candidates := []driver{
		{"forecast volatility", rec.Raw.VolatilityPenalty},
		{"requirements churn", rec.Raw.ChurnPenalty},
		{"backlog growth", rec.Raw.BacklogPenalty},
		{"schedule slip", rec.Raw.SlipPenalty},
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].penalty > candidates[j].penalty
	})

	var out []string
	for _, c := range candidates {
		if c.penalty >= 1 {
			out = append(out, c.label)
		}
	}
	return out
}
