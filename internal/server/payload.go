package server

import (
	"sort"
	"time"

	"pulseboard/internal/scoring"
)

// Payload is the dashboard document: summaries carry the latest week per
// project, series carry the full per-week history.
type Payload struct {
	Summaries []Summary       `json:"summaries"`
	Series    []ProjectSeries `json:"series"`
}

// Summary is one project's most recent score record.
type Summary struct {
	ProjectID       string              `json:"project_id"`
	ProjectName     string              `json:"project_name"`
	WeekEnding      string              `json:"week_ending"`
	HealthScore     float64             `json:"health_score"`
	ConfidenceScore float64             `json:"confidence_score"`
	TrendDelta      float64             `json:"trend_delta"`
	Contributions   map[string]float64  `json:"contributions"`
	Raw             scoring.Diagnostics `json:"raw"`
	Narrative       string              `json:"narrative"`
}

// ProjectSeries is one project's full history as parallel arrays, the shape
// chart libraries consume directly.
type ProjectSeries struct {
	ProjectID           string                `json:"project_id"`
	ProjectName         string                `json:"project_name"`
	Weeks               []string              `json:"weeks"`
	Health              []float64             `json:"health"`
	Confidence          []float64             `json:"confidence"`
	ContributionsByWeek []map[string]float64  `json:"contributions_by_week"`
	RawByWeek           []scoring.Diagnostics `json:"raw_by_week"`
}

// BuildPayload flattens the engine output into the dashboard document.
// Projects are ordered by id for a stable response.
func BuildPayload(results map[string][]scoring.ScoreRecord) Payload {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	payload := Payload{Summaries: []Summary{}, Series: []ProjectSeries{}}
	for _, id := range ids {
		records := results[id]
		if len(records) == 0 {
			continue
		}

		latest := records[len(records)-1]
		payload.Summaries = append(payload.Summaries, Summary{
			ProjectID:       latest.ProjectID,
			ProjectName:     latest.ProjectName,
			WeekEnding:      formatWeek(latest.WeekEnding),
			HealthScore:     latest.HealthScore,
			ConfidenceScore: latest.ConfidenceScore,
			TrendDelta:      latest.TrendDelta,
			Contributions:   latest.Contributions,
			Raw:             latest.Raw,
			Narrative:       latest.Narrative,
		})

		series := ProjectSeries{
			ProjectID:   records[0].ProjectID,
			ProjectName: records[0].ProjectName,
		}
		for _, rec := range records {
			series.Weeks = append(series.Weeks, formatWeek(rec.WeekEnding))
			series.Health = append(series.Health, rec.HealthScore)
			series.Confidence = append(series.Confidence, rec.ConfidenceScore)
			series.ContributionsByWeek = append(series.ContributionsByWeek, rec.Contributions)
			series.RawByWeek = append(series.RawByWeek, rec.Raw)
		}
		payload.Series = append(payload.Series, series)
	}

	return payload
}

func formatWeek(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
