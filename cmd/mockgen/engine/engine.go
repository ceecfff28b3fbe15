// Package engine generates plausible weekly snapshot tables for demos and
// local development. Scenarios shape how the series evolve: a mild baseline,
// a steadily slipping schedule, or heavy scope churn.
package engine

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"
)

type GeneratorConfig struct {
	Scenario string // "mild", "slipping", "churn"
	Projects int
	Weeks    int
	Seed     int64
	Now      time.Time
}

var header = []string{
	"project_id", "project_name", "week_ending", "planned_end_date", "forecast_end_date",
	"delivery_framework", "actual_percent_complete", "planned_percent_complete",
	"backlog_items_added_last_4w", "backlog_items_closed_last_4w",
	"requirements_changed_last_4w", "defect_escape_rate_last_4w", "defects_open_critical",
	"team_size", "team_churn_last_4w", "blocked_days_last_2w",
	"unplanned_work_ratio_last_4w", "dependency_count",
	"planned_cost_to_date", "actual_cost_to_date", "milestones_planned", "milestones_hit",
	"risks_open", "risks_high",
	"throughput", "cycle_time_days", "wip_current", "wip_limit", "aging_wip_items",
}

var projectNames = []string{
	"Atlas Migration", "Billing Revamp", "Customer Portal", "Data Mesh Rollout",
	"Edge Gateway", "Fraud Signals", "Green Ledger", "Helios Mobile",
}

// Generate produces the header plus one row per project-week. Every other
// project uses the kanban framework; planned projects alternate between
// carrying EVM/milestone data and omitting it, so presence gating stays
// visible in demo data.
func Generate(cfg GeneratorConfig) [][]string {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	rows := [][]string{header}

	for p := 0; p < cfg.Projects; p++ {
		id := fmt.Sprintf("PRJ-%03d", p+1)
		name := projectNames[p%len(projectNames)]
		kanban := p%2 == 1
		hasEVM := !kanban && p%4 == 0
		hasMilestones := !kanban && p%4 != 3

		// Baselines.
		plannedEnd := cfg.Now.AddDate(0, 0, 7*(cfg.Weeks/2+rng.Intn(8)))
		teamSize := 4 + rng.Intn(8)
		slip := 0.0
		throughput := 8.0 + rng.Float64()*6

		for w := 0; w < cfg.Weeks; w++ {
			weekEnding := cfg.Now.AddDate(0, 0, -7*(cfg.Weeks-1-w))
			progress := float64(w+1) / float64(cfg.Weeks+2)

			plannedPct := math.Min(1, progress*1.1)
			actualPct := plannedPct
			reqChurn := float64(rng.Intn(4))
			backlogAdded := float64(5 + rng.Intn(10))
			backlogClosed := backlogAdded + float64(rng.Intn(5)) - 2
			defectEscape := rng.Float64() * 0.04
			critical := float64(rng.Intn(2))
			blocked := float64(rng.Intn(3))
			unplanned := rng.Float64() * 0.2

			switch cfg.Scenario {
			case "slipping":
				slip += 5 + rng.Float64()*9
				actualPct = math.Max(0, plannedPct-0.05-0.01*float64(w))
				throughput = math.Max(1, throughput-0.6)
			case "churn":
				reqChurn = float64(6 + rng.Intn(10))
				backlogAdded += 10 + float64(rng.Intn(15))
				defectEscape = 0.05 + rng.Float64()*0.1
				unplanned = 0.3 + rng.Float64()*0.3
			default: // mild
				slip = math.Max(0, slip+rng.Float64()*4-2)
			}

			forecastEnd := plannedEnd.AddDate(0, 0, int(slip))

			row := []string{
				id, name,
				weekEnding.Format("2006-01-02"),
				plannedEnd.Format("2006-01-02"),
				forecastEnd.Format("2006-01-02"),
				framework(kanban),
				ftoa(actualPct), ftoa(plannedPct),
				ftoa(backlogAdded), ftoa(math.Max(0, backlogClosed)),
				ftoa(reqChurn), ftoa(defectEscape), ftoa(critical),
				strconv.Itoa(teamSize), strconv.Itoa(rng.Intn(2)), ftoa(blocked),
				ftoa(unplanned), strconv.Itoa(2 + rng.Intn(6)),
			}

			// Optional planned-side signals.
			if hasEVM {
				plannedCost := 10000 * float64(w+1)
				actualCost := plannedCost * (0.9 + rng.Float64()*0.3)
				row = append(row, ftoa(plannedCost), ftoa(actualCost))
			} else {
				row = append(row, "", "")
			}
			if hasMilestones {
				planned := 2 + w/3
				hit := planned - rng.Intn(2)
				row = append(row, strconv.Itoa(planned), strconv.Itoa(max(0, hit)), strconv.Itoa(rng.Intn(6)), strconv.Itoa(rng.Intn(2)))
			} else {
				row = append(row, "", "", "", "")
			}

			// Optional kanban-side signals.
			if kanban {
				tput := math.Max(0, throughput+rng.Float64()*4-2)
				cycle := 4 + rng.Float64()*8
				wipLimit := teamSize * 2
				wip := wipLimit + rng.Intn(5) - 2
				if cfg.Scenario == "churn" {
					wip += 4
					cycle += 6
				}
				row = append(row,
					ftoa(tput), ftoa(cycle),
					strconv.Itoa(max(0, wip)), strconv.Itoa(wipLimit),
					strconv.Itoa(rng.Intn(4)),
				)
			} else {
				row = append(row, "", "", "", "", "")
			}

			rows = append(rows, row)
		}
	}

	return rows
}

// Save writes the generated table as CSV.
func Save(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func framework(kanban bool) string {
	if kanban {
		return "kanban"
	}
	return "planned"
}

func ftoa(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
