package scoring

import (
	"math"
	"testing"
	"time"
)

func weekSeries(base WeeklySnapshot, weeks int, mutate func(i int, s *WeeklySnapshot)) []WeeklySnapshot {
	out := make([]WeeklySnapshot, 0, weeks)
	for i := 0; i < weeks; i++ {
		s := base
		s.WeekEnding = base.WeekEnding.AddDate(0, 0, 7*i)
		if mutate != nil {
			mutate(i, &s)
		}
		out = append(out, s)
	}
	return out
}

func TestScore_EndToEndPlannedBaseline(t *testing.T) {
	// A planned project at 50% actual vs 55% planned, zero slip, zero
	// everything else, no EVM or milestone data: health strictly below 100
	// (schedule variance −0.05), confidence exactly 100.
	snap := plannedBaseline()
	snap.ActualPercentComplete = 0.50
	snap.PlannedPercentComplete = 0.55

	results := Score([]WeeklySnapshot{snap}, DefaultThresholds())

	records, ok := results["P1"]
	if !ok || len(records) != 1 {
		t.Fatalf("expected 1 record for P1, got %v", results)
	}
	rec := records[0]

	if rec.HealthScore >= 100 {
		t.Errorf("health = %v, want strictly below 100", rec.HealthScore)
	}
	if rec.HealthScore <= 0 {
		t.Errorf("health = %v, want above 0", rec.HealthScore)
	}
	if rec.ConfidenceScore != 100 {
		t.Errorf("confidence = %v, want exactly 100", rec.ConfidenceScore)
	}
	if rec.TrendDelta != 0 {
		t.Errorf("trend delta = %v, want 0 for the first week", rec.TrendDelta)
	}

	if got := rec.Raw.Normalized[MetricSchedVar]; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("schedule variance normalized = %v, want 0.75", got)
	}
	if rec.Raw.CPI != nil {
		t.Errorf("cpi = %v, want absent without cost data", *rec.Raw.CPI)
	}
	if _, present := rec.Contributions[MetricCPI]; present {
		t.Errorf("CPI contribution present without cost data")
	}
	if _, present := rec.MaxContributions[MetricCPI]; present {
		t.Errorf("CPI max contribution present without cost data")
	}
}

func TestScore_TrendDelta(t *testing.T) {
	// Week 2 fixes the schedule lag, so health rises and the delta is the
	// difference of the two rounded health scores.
	series := weekSeries(plannedBaseline(), 2, func(i int, s *WeeklySnapshot) {
		if i == 0 {
			s.PlannedPercentComplete = 0.60
		}
	})

	records := Score(series, DefaultThresholds())["P1"]
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].TrendDelta != 0 {
		t.Errorf("first week trend delta = %v, want 0", records[0].TrendDelta)
	}
	want := round1(records[1].HealthScore - records[0].HealthScore)
	if records[1].TrendDelta != want {
		t.Errorf("trend delta = %v, want %v", records[1].TrendDelta, want)
	}
	if records[1].TrendDelta <= 0 {
		t.Errorf("trend delta = %v, want positive after recovery", records[1].TrendDelta)
	}
}

func TestScore_BoundedScores(t *testing.T) {
	worst := plannedBaseline()
	worst.ActualPercentComplete = 0.1
	worst.PlannedPercentComplete = 1.0
	worst.ForecastEnd = tptr(worst.PlannedEnd.AddDate(2, 0, 0))
	worst.BacklogItemsAdded4W = 500
	worst.RequirementsChanged4W = 300
	worst.DefectEscapeRate4W = 0.9
	worst.DefectsOpenCritical = 40
	worst.TeamSize = 2
	worst.TeamChurn4W = 10
	worst.BlockedDays2W = 60
	worst.UnplannedWorkRatio4W = 1
	worst.DependencyCount = 80
	worst.PlannedCostToDate = fptr(1)
	worst.ActualCostToDate = fptr(1000000)
	worst.MilestonesPlanned = fptr(10)
	worst.MilestonesHit = fptr(0)
	worst.RisksOpen = fptr(50)
	worst.RisksHigh = fptr(20)

	series := weekSeries(worst, 6, func(i int, s *WeeklySnapshot) {
		s.ForecastEnd = tptr(s.PlannedEnd.AddDate(0, 0, 100*i))
	})
	series = append(series, weekSeries(plannedBaseline(), 3, nil)...)

	for _, records := range Score(series, DefaultThresholds()) {
		for _, rec := range records {
			if rec.HealthScore < 0 || rec.HealthScore > 100 {
				t.Errorf("health %v out of [0,100] at %v", rec.HealthScore, rec.WeekEnding)
			}
			if rec.ConfidenceScore < 0 || rec.ConfidenceScore > 100 {
				t.Errorf("confidence %v out of [0,100] at %v", rec.ConfidenceScore, rec.WeekEnding)
			}
			if total := sumValues(rec.MaxContributions); math.Abs(total-100) > 0.1 {
				t.Errorf("max contributions sum %v, want 100 at %v", total, rec.WeekEnding)
			}
		}
	}
}

func TestScore_ChurnMonotonicity(t *testing.T) {
	// Holding all else fixed, more requirements churn never increases
	// confidence.
	prev := math.Inf(1)
	for _, churn := range []float64{0, 2, 5, 20, 80, 200} {
		snap := plannedBaseline()
		snap.RequirementsChanged4W = churn

		rec := Score([]WeeklySnapshot{snap}, DefaultThresholds())["P1"][0]
		if rec.ConfidenceScore > prev {
			t.Errorf("confidence rose from %v to %v when churn grew to %v", prev, rec.ConfidenceScore, churn)
		}
		prev = rec.ConfidenceScore
	}
}

func TestScore_ScheduleVarianceMonotonicity(t *testing.T) {
	// Closing the gap to the plan never lowers the schedule variance metric.
	prev := -1.0
	for _, actual := range []float64{0.30, 0.40, 0.50, 0.55} {
		snap := plannedBaseline()
		snap.ActualPercentComplete = actual
		snap.PlannedPercentComplete = 0.55

		rec := Score([]WeeklySnapshot{snap}, DefaultThresholds())["P1"][0]
		norm := rec.Raw.Normalized[MetricSchedVar]
		if norm < prev {
			t.Errorf("schedule variance metric fell from %v to %v at actual=%v", prev, norm, actual)
		}
		prev = norm
	}
}

func TestScore_KanbanPath(t *testing.T) {
	base := kanbanBaseline()
	series := weekSeries(base, 5, func(i int, s *WeeklySnapshot) {
		tput := 14.0 - 3*float64(i) // falling throughput
		s.Throughput = &tput
	})

	records := Score(series, DefaultThresholds())["P1"]
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}

	last := records[len(records)-1]
	if _, ok := last.Contributions[MetricThroughput]; !ok {
		t.Errorf("throughput contribution missing from kanban record")
	}
	if _, ok := last.Contributions[MetricSchedVar]; ok {
		t.Errorf("schedule variance contribution present in kanban record")
	}
	if last.Raw.VolatilityPenalty == 0 {
		t.Errorf("falling throughput produced no volatility penalty")
	}
	if last.Raw.ThroughputRatio == nil || *last.Raw.ThroughputRatio >= 1 {
		t.Errorf("throughput ratio = %v, want below 1 for a falling series", last.Raw.ThroughputRatio)
	}
}

func TestScore_KanbanSlipPenaltyNeedsTargetDate(t *testing.T) {
	noDates := kanbanBaseline()
	rec := Score([]WeeklySnapshot{noDates}, DefaultThresholds())["P1"][0]
	if rec.Raw.SlipPenalty != 0 {
		t.Errorf("slip penalty = %v without a target date, want 0", rec.Raw.SlipPenalty)
	}

	withDates := kanbanBaseline()
	end := day(2026, 6, 26)
	withDates.PlannedEnd = tptr(end)
	withDates.ForecastEnd = tptr(end.AddDate(0, 0, 20))
	rec = Score([]WeeklySnapshot{withDates}, DefaultThresholds())["P1"][0]
	if math.Abs(rec.Raw.SlipPenalty-3.0) > 1e-9 {
		t.Errorf("slip penalty = %v, want 3.0 (20 days x 0.15)", rec.Raw.SlipPenalty)
	}
}

func TestScore_ProjectsAreIsolated(t *testing.T) {
	a := plannedBaseline()
	b := kanbanBaseline()
	b.ProjectID = "P2"
	b.ProjectName = "Borealis"

	var series []WeeklySnapshot
	series = append(series, weekSeries(a, 3, nil)...)
	series = append(series, weekSeries(b, 4, nil)...)

	results := Score(series, DefaultThresholds())
	if len(results) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(results))
	}
	if len(results["P1"]) != 3 || len(results["P2"]) != 4 {
		t.Errorf("series lengths = %d/%d, want 3/4", len(results["P1"]), len(results["P2"]))
	}
	for _, rec := range results["P2"] {
		if rec.ProjectName != "Borealis" {
			t.Errorf("record leaked across projects: %+v", rec)
		}
	}
}

func TestScore_SortsUnorderedWeeks(t *testing.T) {
	series := weekSeries(plannedBaseline(), 3, nil)
	series[0], series[2] = series[2], series[0]

	records := Score(series, DefaultThresholds())["P1"]
	var prev time.Time
	for _, rec := range records {
		if rec.WeekEnding.Before(prev) {
			t.Fatalf("records not in chronological order: %v before %v", rec.WeekEnding, prev)
		}
		prev = rec.WeekEnding
	}
	if records[0].TrendDelta != 0 {
		t.Errorf("first (earliest) record trend delta = %v, want 0", records[0].TrendDelta)
	}
}

func TestScore_SlipVolatilityAffectsConfidence(t *testing.T) {
	// A forecast that lurches around erodes confidence even when its level
	// stays modest.
	steady := weekSeries(plannedBaseline(), 4, nil)
	erratic := weekSeries(plannedBaseline(), 4, func(i int, s *WeeklySnapshot) {
		slips := []int{0, 20, 5, 40}
		s.ForecastEnd = tptr(s.PlannedEnd.AddDate(0, 0, slips[i]))
	})

	steadyRec := Score(steady, DefaultThresholds())["P1"][3]
	erraticRec := Score(erratic, DefaultThresholds())["P1"][3]

	if steadyRec.Raw.VolatilityPenalty != 0 {
		t.Errorf("steady series volatility penalty = %v, want 0", steadyRec.Raw.VolatilityPenalty)
	}
	if erraticRec.ConfidenceScore >= steadyRec.ConfidenceScore {
		t.Errorf("erratic confidence %v not below steady confidence %v",
			erraticRec.ConfidenceScore, steadyRec.ConfidenceScore)
	}
}
