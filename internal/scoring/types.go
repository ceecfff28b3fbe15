package scoring

import (
	"time"
)

// DeliveryFramework selects the scoring regime for a project.
type DeliveryFramework string

const (
	// Planned covers schedule-driven projects (baseline dates, EVM, milestones).
	Planned DeliveryFramework = "planned"
	// Kanban covers flow-driven projects (throughput, cycle time, WIP).
	Kanban DeliveryFramework = "kanban"
)

// WeeklySnapshot is one reported status row for one project and one week.
// Optional signals are pointers: nil means the field was not reported, which
// excludes the corresponding metric from that week's computation entirely.
type WeeklySnapshot struct {
	ProjectID   string            `json:"project_id"`
	ProjectName string            `json:"project_name"`
	WeekEnding  time.Time         `json:"week_ending"`
	PlannedEnd  *time.Time        `json:"planned_end_date,omitempty"`
	ForecastEnd *time.Time        `json:"forecast_end_date,omitempty"`
	Framework   DeliveryFramework `json:"delivery_framework"`

	ActualPercentComplete  float64 `json:"actual_percent_complete"`
	PlannedPercentComplete float64 `json:"planned_percent_complete"`
	BacklogItemsAdded4W    float64 `json:"backlog_items_added_last_4w"`
	BacklogItemsClosed4W   float64 `json:"backlog_items_closed_last_4w"`
	RequirementsChanged4W  float64 `json:"requirements_changed_last_4w"`
	DefectEscapeRate4W     float64 `json:"defect_escape_rate_last_4w"`
	DefectsOpenCritical    float64 `json:"defects_open_critical"`
	TeamSize               float64 `json:"team_size"`
	TeamChurn4W            float64 `json:"team_churn_last_4w"`
	BlockedDays2W          float64 `json:"blocked_days_last_2w"`
	UnplannedWorkRatio4W   float64 `json:"unplanned_work_ratio_last_4w"`
	DependencyCount        float64 `json:"dependency_count"`

	// EVM / milestone / risk signals (planned projects, usually).
	PlannedCostToDate *float64 `json:"planned_cost_to_date,omitempty"`
	ActualCostToDate  *float64 `json:"actual_cost_to_date,omitempty"`
	MilestonesPlanned *float64 `json:"milestones_planned,omitempty"`
	MilestonesHit     *float64 `json:"milestones_hit,omitempty"`
	RisksOpen         *float64 `json:"risks_open,omitempty"`
	RisksHigh         *float64 `json:"risks_high,omitempty"`

	// Flow signals (kanban projects).
	Throughput    *float64 `json:"throughput,omitempty"`
	CycleTimeDays *float64 `json:"cycle_time_days,omitempty"`
	WIPCurrent    *float64 `json:"wip_current,omitempty"`
	WIPLimit      *float64 `json:"wip_limit,omitempty"`
	AgingWIPItems *float64 `json:"aging_wip_items,omitempty"`
}

// ScoreRecord is the derived result for one project-week.
type ScoreRecord struct {
	ProjectID       string             `json:"project_id"`
	ProjectName     string             `json:"project_name"`
	WeekEnding      time.Time          `json:"week_ending"`
	HealthScore     float64            `json:"health_score"`
	ConfidenceScore float64            `json:"confidence_score"`
	TrendDelta      float64            `json:"trend_delta"`
	Contributions   map[string]float64 `json:"contributions"`
	// MaxContributions holds, per metric, the points the metric would have
	// contributed at perfect health. The values sum to 100 for any active set.
	MaxContributions map[string]float64 `json:"max_contributions"`
	Raw              Diagnostics        `json:"raw"`
	Narrative        string             `json:"narrative"`
}

// Diagnostics is the raw breakdown bag attached to every ScoreRecord for
// narrative composition and debugging. Optional derived quantities stay nil
// when their inputs were absent; they are never defaulted to a neutral value.
type Diagnostics struct {
	Framework    DeliveryFramework  `json:"framework"`
	PctComplete  float64            `json:"pct_complete"`
	PlannedPct   float64            `json:"planned_pct"`
	SchedVarPct  float64            `json:"sched_var_pct"`
	Proximity    float64            `json:"proximity_pct"`
	SlipDays     *float64           `json:"slip_days,omitempty"`
	NetBacklog   float64            `json:"net_backlog"`
	ReqChurn     float64            `json:"req_churn"`
	Normalized   map[string]float64 `json:"normalized"`
	CPI          *float64           `json:"cpi,omitempty"`
	SPI          *float64           `json:"spi,omitempty"`
	MilestoneRate *float64          `json:"milestone_rate,omitempty"`
	RiskLoad     *float64           `json:"risk_load,omitempty"`
	ThroughputRatio *float64        `json:"throughput_ratio,omitempty"`

	SlipPenalty       float64             `json:"slip_penalty"`
	ChurnPenalty      float64             `json:"churn_penalty"`
	BacklogPenalty    float64             `json:"backlog_penalty"`
	VolatilityPenalty float64             `json:"volatility_penalty"`
	Volatility        VolatilityBreakdown `json:"volatility"`
}
