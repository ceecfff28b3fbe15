package visuals

import (
	"fmt"
	"sort"
	"strings"

	"pulseboard/internal/scoring"
)

// GenerateTrendChart creates a Mermaid xychart of a project's health and
// confidence scores across its weekly series.
func GenerateTrendChart(records []scoring.ScoreRecord) string {
	if len(records) == 0 {
		return ""
	}

	var labels []string
	var health []string
	var confidence []string

	for _, rec := range records {
		labels = append(labels, fmt.Sprintf("\"%s\"", rec.WeekEnding.Format("01-02")))
		health = append(health, fmt.Sprintf("%.1f", rec.HealthScore))
		confidence = append(confidence, fmt.Sprintf("%.1f", rec.ConfidenceScore))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s - Health and Confidence\"\n", records[0].ProjectName))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Score\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(health, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(confidence, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateContributionChart creates a Mermaid bar chart of one week's
// per-metric contributions against their ceilings.
func GenerateContributionChart(rec scoring.ScoreRecord) string {
	if len(rec.Contributions) == 0 {
		return ""
	}

	metrics := make([]string, 0, len(rec.MaxContributions))
	for label := range rec.MaxContributions {
		metrics = append(metrics, label)
	}
	sort.Strings(metrics)

	var labels []string
	var earned []string
	var ceilings []string
	maxVal := 0.0

	for _, label := range metrics {
		labels = append(labels, fmt.Sprintf("\"%s\"", label))
		earned = append(earned, fmt.Sprintf("%.1f", rec.Contributions[label]))
		ceilings = append(ceilings, fmt.Sprintf("%.1f", rec.MaxContributions[label]))
		if rec.MaxContributions[label] > maxVal {
			maxVal = rec.MaxContributions[label]
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s - Week %s Contributions\"\n", rec.ProjectName, rec.WeekEnding.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Points\" 0 --> %.0f\n", maxVal*1.2+1))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(ceilings, ", ")))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(earned, ", ")))
	sb.WriteString("```")
	return sb.String()
}
