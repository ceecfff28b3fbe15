// Package ingest loads weekly snapshot rows from CSV into the scoring
// engine's input type. It owns the tolerant parts of the pipeline: dropping
// empty rows, treating unparseable cells as absent values and defaulting the
// delivery framework.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"pulseboard/internal/scoring"

	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// LoadCSV reads a snapshot table from disk.
func LoadCSV(path string) ([]scoring.WeeklySnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	snapshots, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return snapshots, nil
}

// Parse reads a header-mapped CSV. Column order is free; unknown columns are
// ignored. Fully-empty rows are dropped. A missing or malformed optional cell
// becomes an absent value, never an error.
func Parse(r io.Reader) ([]scoring.WeeklySnapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := cols["project_id"]; !ok {
		return nil, fmt.Errorf("snapshot table has no project_id column")
	}

	var snapshots []scoring.WeeklySnapshot
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line+1, err)
		}
		line++

		row := rowReader{cols: cols, record: record, line: line}
		if row.empty() {
			continue
		}

		snap := scoring.WeeklySnapshot{
			ProjectID:   row.str("project_id"),
			ProjectName: row.str("project_name"),
			WeekEnding:  row.date("week_ending"),
			PlannedEnd:  row.optDate("planned_end_date"),
			ForecastEnd: row.optDate("forecast_end_date"),
			Framework:   framework(row.str("delivery_framework")),

			ActualPercentComplete:  row.num("actual_percent_complete"),
			PlannedPercentComplete: row.num("planned_percent_complete"),
			BacklogItemsAdded4W:    row.num("backlog_items_added_last_4w"),
			BacklogItemsClosed4W:   row.num("backlog_items_closed_last_4w"),
			RequirementsChanged4W:  row.num("requirements_changed_last_4w"),
			DefectEscapeRate4W:     row.num("defect_escape_rate_last_4w"),
			DefectsOpenCritical:    row.num("defects_open_critical"),
			TeamSize:               row.num("team_size"),
			TeamChurn4W:            row.num("team_churn_last_4w"),
			BlockedDays2W:          row.num("blocked_days_last_2w"),
			UnplannedWorkRatio4W:   row.num("unplanned_work_ratio_last_4w"),
			DependencyCount:        row.num("dependency_count"),

			PlannedCostToDate: row.optNum("planned_cost_to_date"),
			ActualCostToDate:  row.optNum("actual_cost_to_date"),
			MilestonesPlanned: row.optNum("milestones_planned"),
			MilestonesHit:     row.optNum("milestones_hit"),
			RisksOpen:         row.optNum("risks_open"),
			RisksHigh:         row.optNum("risks_high"),
			Throughput:        row.optNum("throughput"),
			CycleTimeDays:     row.optNum("cycle_time_days"),
			WIPCurrent:        row.optNum("wip_current"),
			WIPLimit:          row.optNum("wip_limit"),
			AgingWIPItems:     row.optNum("aging_wip_items"),
		}

		if snap.ProjectID == "" {
			log.Warn().Int("line", line).Msg("Dropping row without project_id")
			continue
		}

		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

func framework(raw string) scoring.DeliveryFramework {
	if strings.EqualFold(strings.TrimSpace(raw), string(scoring.Kanban)) {
		return scoring.Kanban
	}
	return scoring.Planned
}

// rowReader resolves cells by column name for one record.
type rowReader struct {
	cols   map[string]int
	record []string
	line   int
}

func (r rowReader) empty() bool {
	for _, cell := range r.record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (r rowReader) cell(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r rowReader) str(name string) string {
	return r.cell(name)
}

// num parses a required numeric cell; empty or malformed cells read as 0.
func (r rowReader) num(name string) float64 {
	raw := r.cell(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Int("line", r.line).Str("column", name).Str("value", raw).Msg("Unparseable numeric cell, reading as 0")
		return 0
	}
	return v
}

// optNum parses an optional numeric cell; empty or malformed cells are
// absent, which disables the corresponding metric downstream.
func (r rowReader) optNum(name string) *float64 {
	raw := r.cell(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Int("line", r.line).Str("column", name).Str("value", raw).Msg("Unparseable numeric cell, treating as absent")
		return nil
	}
	return &v
}

// date parses the non-optional week_ending cell. A malformed date keeps the
// row but sorts it to the front of the series as the zero time.
func (r rowReader) date(name string) time.Time {
	raw := r.cell(name)
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		log.Warn().Int("line", r.line).Str("column", name).Str("value", raw).Msg("Unparseable date cell")
		return time.Time{}
	}
	return t
}

func (r rowReader) optDate(name string) *time.Time {
	raw := r.cell(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		log.Warn().Int("line", r.line).Str("column", name).Str("value", raw).Msg("Unparseable date cell, treating as absent")
		return nil
	}
	return &t
}
