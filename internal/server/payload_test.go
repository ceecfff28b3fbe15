package server

import (
	"testing"
	"time"

	"pulseboard/internal/scoring"
)

func rec(id, name string, week time.Time, health float64) scoring.ScoreRecord {
	return scoring.ScoreRecord{
		ProjectID:       id,
		ProjectName:     name,
		WeekEnding:      week,
		HealthScore:     health,
		ConfidenceScore: 90,
		Contributions:   map[string]float64{"Backlog Growth": 10},
		Narrative:       name + " narrative",
	}
}

func TestBuildPayload(t *testing.T) {
	w1 := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	w2 := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)

	results := map[string][]scoring.ScoreRecord{
		"P2": {rec("P2", "Borealis", w1, 55)},
		"P1": {rec("P1", "Atlas", w1, 80), rec("P1", "Atlas", w2, 82.5)},
	}

	payload := BuildPayload(results)

	if len(payload.Summaries) != 2 || len(payload.Series) != 2 {
		t.Fatalf("got %d summaries / %d series, want 2 / 2", len(payload.Summaries), len(payload.Series))
	}

	// Ordered by project id.
	if payload.Summaries[0].ProjectID != "P1" || payload.Summaries[1].ProjectID != "P2" {
		t.Errorf("summary order = %q, %q; want P1, P2", payload.Summaries[0].ProjectID, payload.Summaries[1].ProjectID)
	}

	// Summary is the latest week.
	atlas := payload.Summaries[0]
	if atlas.WeekEnding != "2026-01-16" {
		t.Errorf("Atlas summary week = %q, want latest week 2026-01-16", atlas.WeekEnding)
	}
	if atlas.HealthScore != 82.5 {
		t.Errorf("Atlas summary health = %v, want 82.5", atlas.HealthScore)
	}
	if atlas.Narrative != "Atlas narrative" {
		t.Errorf("Atlas narrative = %q", atlas.Narrative)
	}

	// Series carries the full history as parallel arrays.
	series := payload.Series[0]
	if series.ProjectID != "P1" {
		t.Fatalf("first series = %q, want P1", series.ProjectID)
	}
	if len(series.Weeks) != 2 || len(series.Health) != 2 || len(series.Confidence) != 2 {
		t.Fatalf("Atlas series arrays have lengths %d/%d/%d, want 2 each",
			len(series.Weeks), len(series.Health), len(series.Confidence))
	}
	if series.Weeks[0] != "2026-01-09" || series.Weeks[1] != "2026-01-16" {
		t.Errorf("Atlas weeks = %v", series.Weeks)
	}
	if series.Health[0] != 80 || series.Health[1] != 82.5 {
		t.Errorf("Atlas health series = %v", series.Health)
	}
	if len(series.ContributionsByWeek) != 2 || series.ContributionsByWeek[0]["Backlog Growth"] != 10 {
		t.Errorf("Atlas contributions series = %v", series.ContributionsByWeek)
	}
}

func TestBuildPayload_Empty(t *testing.T) {
	payload := BuildPayload(map[string][]scoring.ScoreRecord{})
	if payload.Summaries == nil || payload.Series == nil {
		t.Error("empty payload must carry empty slices, not nulls")
	}
	if len(payload.Summaries) != 0 || len(payload.Series) != 0 {
		t.Errorf("unexpected entries in empty payload: %+v", payload)
	}
}

func TestFormatWeek_ZeroTime(t *testing.T) {
	if got := formatWeek(time.Time{}); got != "" {
		t.Errorf("formatWeek(zero) = %q, want empty string", got)
	}
}
