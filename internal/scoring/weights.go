package scoring

import "math"

// Metric labels as they appear in contributions and narratives.
const (
	MetricSchedVar     = "Schedule Variance"
	MetricForecastSlip = "Forecast Slip"
	MetricBacklog      = "Backlog Growth"
	MetricReqChurn     = "Req. Churn"
	MetricDefectEscape = "Defect Escape Rate"
	MetricCritical     = "Critical Defects"
	MetricTeamChurn    = "Team Churn"
	MetricBlocked      = "Blocked Days"
	MetricUnplanned    = "Unplanned Work"
	MetricDependencies = "Dependencies"
	MetricCPI          = "CPI (Cost)"
	MetricSPI          = "SPI (Schedule)"
	MetricMilestones   = "Milestones"
	MetricRisk         = "Risk Exposure"
	MetricThroughput   = "Throughput"
	MetricCycleTime    = "Cycle Time"
	MetricWIP          = "WIP Adherence"
	MetricAgingWIP     = "Aging WIP"
)

// metricEntry is one active metric for one project-week: its label, nominal
// weight and normalized healthiness. Entries are assembled fresh per week and
// renormalized as a set; no weight table is shared or mutated across rows.
type metricEntry struct {
	label  string
	weight float64
	value  float64
}

// proximityFactor ramps from 0 at 30% complete to 1 at 100%. Schedule and
// quality risk matter disproportionately more as a project nears its end.
func proximityFactor(actualPct float64) float64 {
	return clamp01((actualPct - 0.30) / 0.70)
}

// derived holds the intermediate quantities computed once per snapshot and
// consumed by both weight schemes and the confidence penalties. Pointer
// fields are nil when their source data was absent or defective.
type derived struct {
	proximity  float64
	schedVar   float64
	slipDays   *float64
	netBacklog float64
	critRatio  float64
	churnRatio float64

	cpi           *float64
	spi           *float64
	milestoneRate *float64
	riskLoad      *float64
	wipOverage    *float64
}

func deriveQuantities(s WeeklySnapshot) derived {
	d := derived{
		proximity:  proximityFactor(s.ActualPercentComplete),
		schedVar:   s.ActualPercentComplete - s.PlannedPercentComplete,
		netBacklog: s.BacklogItemsAdded4W - s.BacklogItemsClosed4W,
	}

	// Forecast slip needs both baseline dates; a malformed or missing date
	// disables the slip metric and the slip confidence penalty for this row.
	if s.PlannedEnd != nil && s.ForecastEnd != nil {
		slip := math.Round(s.ForecastEnd.Sub(*s.PlannedEnd).Hours() / 24)
		d.slipDays = &slip
	}

	team := math.Max(1, s.TeamSize)
	d.critRatio = s.DefectsOpenCritical / team
	d.churnRatio = s.TeamChurn4W / team

	// EVM data counts as present only when both cost figures exist and are
	// positive; a zero actual cost cannot feed a CPI denominator.
	if s.PlannedCostToDate != nil && s.ActualCostToDate != nil &&
		*s.PlannedCostToDate > 0 && *s.ActualCostToDate > 0 {
		plannedPct := math.Max(0.01, s.PlannedPercentComplete)
		spi := s.ActualPercentComplete / plannedPct
		earned := *s.PlannedCostToDate * spi
		cpi := earned / *s.ActualCostToDate
		d.spi = &spi
		d.cpi = &cpi
	}

	if s.MilestonesPlanned != nil && s.MilestonesHit != nil && *s.MilestonesPlanned > 0 {
		rate := *s.MilestonesHit / *s.MilestonesPlanned
		d.milestoneRate = &rate
	}

	if s.RisksOpen != nil && s.RisksHigh != nil {
		load := *s.RisksOpen + 2**s.RisksHigh
		d.riskLoad = &load
	}

	if s.WIPCurrent != nil && s.WIPLimit != nil {
		limit := math.Max(1, *s.WIPLimit)
		overage := math.Max(0, *s.WIPCurrent-limit) / limit
		d.wipOverage = &overage
	}

	return d
}

// plannedMetrics assembles the active metric set for a schedule-driven
// project-week. Schedule and quality weights scale up with proximity;
// unplanned-work and dependency weights scale down. EVM, milestone and risk
// metrics join the set only when their data is present.
func plannedMetrics(s WeeklySnapshot, th Thresholds, d derived) []metricEntry {
	p := d.proximity
	entries := []metricEntry{
		{MetricSchedVar, 0.12 + 0.08*p, normalizeRatio(1+d.schedVar, 1+th.value("sched_var_floor"))},
		{MetricBacklog, 0.10, normalizePenalty(d.netBacklog, th.value("backlog_net_max"))},
		{MetricReqChurn, 0.08, normalizePenalty(s.RequirementsChanged4W, th.value("req_churn_max"))},
		{MetricDefectEscape, 0.10 + 0.05*p, normalizePenalty(s.DefectEscapeRate4W, th.value("defect_escape_max"))},
		{MetricCritical, 0.10 + 0.03*p, normalizePenalty(d.critRatio, th.value("crit_per_member_max"))},
		{MetricTeamChurn, 0.08, normalizePenalty(d.churnRatio, th.value("team_churn_ratio_max"))},
		{MetricBlocked, 0.08, normalizePenalty(s.BlockedDays2W, th.value("blocked_days_max"))},
		{MetricUnplanned, 0.10 - 0.04*p, normalizePenalty(s.UnplannedWorkRatio4W, th.value("unplanned_ratio_max"))},
		{MetricDependencies, 0.06 - 0.03*p, normalizePenalty(s.DependencyCount, th.value("dependency_max"))},
	}

	if d.slipDays != nil {
		entries = append(entries, metricEntry{MetricForecastSlip, 0.10 + 0.08*p,
			normalizePenalty(*d.slipDays, th.value("slip_days_max"))})
	}
	if d.cpi != nil {
		entries = append(entries, metricEntry{MetricCPI, 0.06, normalizeRatio(*d.cpi, th.value("cpi_floor"))})
	}
	if d.spi != nil {
		entries = append(entries, metricEntry{MetricSPI, 0.06, normalizeRatio(*d.spi, th.value("spi_floor"))})
	}
	if d.milestoneRate != nil {
		entries = append(entries, metricEntry{MetricMilestones, 0.05, normalizeRatio(*d.milestoneRate, th.value("milestone_floor"))})
	}
	if d.riskLoad != nil {
		entries = append(entries, metricEntry{MetricRisk, 0.05, normalizePenalty(*d.riskLoad, th.value("risk_load_max"))})
	}

	return entries
}

// kanbanMetrics assembles the active metric set for a flow-driven
// project-week. Flow weights are fixed (no proximity scaling); scope, quality
// and resource metrics are shared with the planned scheme. Slip, EVM and
// milestone metrics join only when their data is present — slip is a
// secondary signal for kanban and carries a smaller weight.
func kanbanMetrics(s WeeklySnapshot, th Thresholds, d derived, tputRatio *float64) []metricEntry {
	entries := []metricEntry{
		{MetricBacklog, 0.10, normalizePenalty(d.netBacklog, th.value("backlog_net_max"))},
		{MetricReqChurn, 0.08, normalizePenalty(s.RequirementsChanged4W, th.value("req_churn_max"))},
		{MetricDefectEscape, 0.10, normalizePenalty(s.DefectEscapeRate4W, th.value("defect_escape_max"))},
		{MetricCritical, 0.10, normalizePenalty(d.critRatio, th.value("crit_per_member_max"))},
		{MetricTeamChurn, 0.08, normalizePenalty(d.churnRatio, th.value("team_churn_ratio_max"))},
		{MetricBlocked, 0.08, normalizePenalty(s.BlockedDays2W, th.value("blocked_days_max"))},
	}

	if tputRatio != nil {
		entries = append(entries, metricEntry{MetricThroughput, 0.14,
			normalizeRatio(*tputRatio, th.value("throughput_ratio_floor"))})
	}
	if s.CycleTimeDays != nil {
		entries = append(entries, metricEntry{MetricCycleTime, 0.10,
			normalizePenalty(*s.CycleTimeDays, th.value("cycle_time_max"))})
	}
	if d.wipOverage != nil {
		entries = append(entries, metricEntry{MetricWIP, 0.08,
			normalizePenalty(*d.wipOverage, th.value("wip_overage_max"))})
	}
	if s.AgingWIPItems != nil {
		entries = append(entries, metricEntry{MetricAgingWIP, 0.08,
			normalizePenalty(*s.AgingWIPItems, th.value("aging_wip_max"))})
	}
	if d.slipDays != nil {
		entries = append(entries, metricEntry{MetricForecastSlip, 0.08,
			normalizePenalty(*d.slipDays, th.value("slip_days_max"))})
	}
	if d.cpi != nil {
		entries = append(entries, metricEntry{MetricCPI, 0.06, normalizeRatio(*d.cpi, th.value("cpi_floor"))})
	}
	if d.milestoneRate != nil {
		entries = append(entries, metricEntry{MetricMilestones, 0.05, normalizeRatio(*d.milestoneRate, th.value("milestone_floor"))})
	}

	return entries
}

// aggregate renormalizes the active weights to sum to 1.0 and folds the
// entries into contribution points. The renormalization guarantees max
// contributions always sum to 100, so health scores stay comparable across
// weeks and projects even as the active metric set varies.
func aggregate(entries []metricEntry) (contributions, maxContributions map[string]float64, health float64) {
	totalWeight := 0.0
	for _, e := range entries {
		totalWeight += e.weight
	}
	if totalWeight < 0.01 {
		totalWeight = 0.01
	}

	contributions = make(map[string]float64, len(entries))
	maxContributions = make(map[string]float64, len(entries))
	for _, e := range entries {
		share := e.weight / totalWeight * 100
		contributions[e.label] = round2(share * e.value)
		maxContributions[e.label] = round2(share)
		health += share * e.value
	}
	return contributions, maxContributions, health
}
