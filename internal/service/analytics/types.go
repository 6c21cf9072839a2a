package analytics

import "github.com/google/uuid"

// Severity levels for bottleneck entries.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Workload status levels.
const (
	StatusOverloaded    = "overloaded"
	StatusBalanced      = "balanced"
	StatusUnderutilized = "underutilized"
	StatusIdle          = "idle"
)

// OverviewReport summarizes a board's tasks by workflow position.
type OverviewReport struct {
	TotalTasks     int     `json:"total_tasks"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	Overdue        int     `json:"overdue"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completion_rate"`
}

// Velocity compares completions of the last seven days against the
// seven days before them.
type Velocity struct {
	ThisWeek     int     `json:"this_week"`
	LastWeek     int     `json:"last_week"`
	TrendPercent float64 `json:"trend_percent"`
}

// ProductivityReport measures completion throughput over a window
// ending at the time of the query.
type ProductivityReport struct {
	WindowDays             int      `json:"window_days"`
	CompletedInPeriod      int      `json:"completed_in_period"`
	AvgCompletionTimeHours float64  `json:"avg_completion_time_hours"`
	AvgCompletionTimeDays  float64  `json:"avg_completion_time_days"`
	TasksPerDay            float64  `json:"tasks_per_day"`
	Velocity               Velocity `json:"velocity"`
}

// BottleneckEntry describes the tasks currently parked in one state.
type BottleneckEntry struct {
	StateID      uuid.UUID `json:"state_id"`
	StateName    string    `json:"state_name"`
	StateOrder   int       `json:"state_order"`
	TasksCount   int       `json:"tasks_count"`
	AvgTimeHours float64   `json:"avg_time_hours"`
	AvgTimeDays  float64   `json:"avg_time_days"`
	Severity     string    `json:"severity"`
}

// WorkloadEntry describes one assignee's load on the board.
type WorkloadEntry struct {
	UserID                 uuid.UUID `json:"user_id"`
	Username               string    `json:"username"`
	FullName               string    `json:"full_name"`
	AssignedTasks          int       `json:"assigned_tasks"`
	CompletedThisWeek      int       `json:"completed_this_week"`
	AvgCompletionTimeHours float64   `json:"avg_completion_time_hours"`
	AvgCompletionTimeDays  float64   `json:"avg_completion_time_days"`
	Status                 string    `json:"status"`
}

// StateTimeEntry is the time-in-state approximation for one state,
// keyed by state name in the report.
type StateTimeEntry struct {
	StateOrder int     `json:"state_order"`
	TasksCount int     `json:"tasks_count"`
	AvgHours   float64 `json:"avg_hours"`
	AvgDays    float64 `json:"avg_days"`
}

// TrendEntry is one day's creation/completion balance.
type TrendEntry struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
	Net       int    `json:"net"`
}

// StateCountEntry is a per-state task count, optionally restricted to a
// creation date range.
type StateCountEntry struct {
	StateID    uuid.UUID `json:"state_id"`
	StateName  string    `json:"state_name"`
	StateOrder int       `json:"state_order"`
	TasksCount int       `json:"tasks_count"`
}
