package scoring

import (
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Score derives a ScoreRecord for every supplied project-week. Snapshots are
// grouped by project id and each group is sorted by week_ending ascending
// before scoring; rolling computations only ever look backwards within a
// group. Projects are independent, so groups are scored in parallel. The
// thresholds map is read-only and shared across all projects.
func Score(snapshots []WeeklySnapshot, th Thresholds) map[string][]ScoreRecord {
	groups := make(map[string][]WeeklySnapshot)
	var order []string
	for _, s := range snapshots {
		if _, seen := groups[s.ProjectID]; !seen {
			order = append(order, s.ProjectID)
		}
		groups[s.ProjectID] = append(groups[s.ProjectID], s)
	}

	results := make(map[string][]ScoreRecord, len(groups))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for _, pid := range order {
		rows := groups[pid]
		g.Go(func() error {
			// A failure in one project must not abort the others.
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("project", pid).Any("panic", r).Msg("Project scoring failed, skipping")
				}
			}()

			records := scoreProject(rows, th)

			mu.Lock()
			results[pid] = records
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// penalties holds the confidence deductions for one project-week.
type penalties struct {
	slip       float64
	churn      float64
	backlog    float64
	volatility float64
}

func (p penalties) confidence() float64 {
	return round1(clamp(100-p.volatility-p.churn-p.backlog-p.slip, 0, 100))
}

// scoreProject walks one project's chronological snapshots, carrying the
// rolling slip/throughput histories and the previous week's health.
func scoreProject(rows []WeeklySnapshot, th Thresholds) []ScoreRecord {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].WeekEnding.Before(rows[j].WeekEnding)
	})

	var slipHistory, tputHistory []float64
	var prevHealth float64

	records := make([]ScoreRecord, 0, len(rows))
	for i, snap := range rows {
		d := deriveQuantities(snap)

		if d.slipDays != nil {
			slipHistory = append(slipHistory, *d.slipDays)
		}
		if snap.Throughput != nil {
			tputHistory = append(tputHistory, *snap.Throughput)
		}

		var entries []metricEntry
		var vol VolatilityBreakdown
		var tputRatio *float64
		if snap.Framework == Kanban {
			if snap.Throughput != nil {
				ratio := throughputRatio(tputHistory)
				tputRatio = &ratio
			}
			entries = kanbanMetrics(snap, th, d, tputRatio)
			vol = DirectionalCoVPenalty(tputHistory, ThroughputVolatility)
		} else {
			entries = plannedMetrics(snap, th, d)
			vol = DirectionalCoVPenalty(slipHistory, SlipVolatility)
		}

		contributions, maxContributions, health := aggregate(entries)
		health = round1(health)

		pen := computePenalties(snap, d, vol.Penalty)

		rec := ScoreRecord{
			ProjectID:        snap.ProjectID,
			ProjectName:      snap.ProjectName,
			WeekEnding:       snap.WeekEnding,
			HealthScore:      health,
			ConfidenceScore:  pen.confidence(),
			Contributions:    contributions,
			MaxContributions: maxContributions,
			Raw:              buildDiagnostics(snap, d, entries, vol, pen, tputRatio),
		}

		if i > 0 {
			rec.TrendDelta = round1(health - prevHealth)
		}
		prevHealth = health

		rec.Narrative = ComposeNarrative(rec)
		records = append(records, rec)
	}

	return records
}

// computePenalties derives the four confidence deductions. Kanban projects
// weigh slip lower (it is a secondary signal there), and only when a target
// date exists at all.
func computePenalties(snap WeeklySnapshot, d derived, volatilityPenalty float64) penalties {
	p := penalties{
		volatility: volatilityPenalty,
		churn:      snap.RequirementsChanged4W * 1.0,
	}

	if d.netBacklog > 0 {
		p.backlog = d.netBacklog * 0.5
	}

	if d.slipDays != nil && *d.slipDays > 0 {
		coeff := 0.25
		if snap.Framework == Kanban {
			coeff = 0.15
		}
		p.slip = *d.slipDays * coeff
	}

	return p
}

func buildDiagnostics(snap WeeklySnapshot, d derived, entries []metricEntry, vol VolatilityBreakdown, pen penalties, tputRatio *float64) Diagnostics {
	normalized := make(map[string]float64, len(entries))
	for _, e := range entries {
		normalized[e.label] = round2(e.value)
	}

	return Diagnostics{
		Framework:         snap.Framework,
		PctComplete:       round1(snap.ActualPercentComplete * 100),
		PlannedPct:        round1(snap.PlannedPercentComplete * 100),
		SchedVarPct:       round1(d.schedVar * 100),
		Proximity:         round1(d.proximity * 100),
		SlipDays:          d.slipDays,
		NetBacklog:        d.netBacklog,
		ReqChurn:          snap.RequirementsChanged4W,
		Normalized:        normalized,
		CPI:               d.cpi,
		SPI:               d.spi,
		MilestoneRate:     d.milestoneRate,
		RiskLoad:          d.riskLoad,
		ThroughputRatio:   tputRatio,
		SlipPenalty:       pen.slip,
		ChurnPenalty:      pen.churn,
		BacklogPenalty:    pen.backlog,
		VolatilityPenalty: round2(pen.volatility),
		Volatility:        vol,
	}
}
