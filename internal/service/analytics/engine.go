// Package analytics computes on-demand board metrics from live task
// rows. The aggregation procedures are pure functions over a loaded
// snapshot of tasks and workflow states; they perform no I/O and are
// safe to run concurrently. The service in this package loads the
// snapshot and gates access at board visibility.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/domain"
)

// computeOverview counts tasks by workflow position. Completed tasks sit
// in the final state, in-progress tasks in any state that is neither
// initial nor final, which needs at least two states to exist.
func computeOverview(tasks []*domain.Task, states []domain.WorkflowState, now time.Time) OverviewReport {
	report := OverviewReport{TotalTasks: len(tasks)}
	if len(tasks) == 0 {
		return report
	}

	initial := domain.InitialState(states)
	final := domain.FinalState(states)

	for _, t := range tasks {
		isFinal := final != nil && t.StateID == final.ID
		isInitial := initial != nil && t.StateID == initial.ID

		if isFinal {
			report.Completed++
			continue
		}
		if !isInitial {
			report.InProgress++
		}
		if t.EndDate != nil && t.EndDate.Before(now) {
			report.Overdue++
		}
	}

	report.Pending = report.TotalTasks - report.Completed - report.InProgress
	report.CompletionRate = round1(float64(report.Completed) / float64(report.TotalTasks) * 100)
	return report
}

// computeProductivity measures completion throughput over a window
// ending at now. Completion time approximates updated_at − created_at
// for tasks sitting in the final state.
func computeProductivity(tasks []*domain.Task, states []domain.WorkflowState, now time.Time, windowDays int) ProductivityReport {
	report := ProductivityReport{WindowDays: windowDays}

	final := domain.FinalState(states)
	if final == nil {
		return report
	}

	windowStart := now.AddDate(0, 0, -windowDays)
	weekStart := now.AddDate(0, 0, -7)
	prevWeekStart := now.AddDate(0, 0, -14)

	var totalHours float64
	for _, t := range tasks {
		if t.StateID != final.ID {
			continue
		}
		if !t.UpdatedAt.Before(windowStart) && t.UpdatedAt.Before(now) {
			report.CompletedInPeriod++
			totalHours += t.UpdatedAt.Sub(t.CreatedAt).Hours()
		}
		if !t.UpdatedAt.Before(weekStart) && t.UpdatedAt.Before(now) {
			report.Velocity.ThisWeek++
		} else if !t.UpdatedAt.Before(prevWeekStart) && t.UpdatedAt.Before(weekStart) {
			report.Velocity.LastWeek++
		}
	}

	if report.CompletedInPeriod > 0 {
		avg := totalHours / float64(report.CompletedInPeriod)
		report.AvgCompletionTimeHours = round1(avg)
		report.AvgCompletionTimeDays = round1(avg / 24)
	}
	if windowDays > 0 {
		report.TasksPerDay = round2(float64(report.CompletedInPeriod) / float64(windowDays))
	}
	if report.Velocity.LastWeek > 0 {
		report.Velocity.TrendPercent = round1(float64(report.Velocity.ThisWeek-report.Velocity.LastWeek) /
			float64(report.Velocity.LastWeek) * 100)
	}

	return report
}

// computeBottlenecks reports, per non-empty state, how many tasks
// currently sit in it and for how long on average. States holding no
// tasks are omitted. Time in state approximates now − updated_at for the
// tasks currently there, not true entry-to-exit dwell time.
func computeBottlenecks(tasks []*domain.Task, states []domain.WorkflowState, now time.Time) []BottleneckEntry {
	entries := make([]BottleneckEntry, 0, len(states))

	for _, state := range states {
		entry := BottleneckEntry{
			StateID:    state.ID,
			StateName:  state.Name,
			StateOrder: state.Order,
		}

		var totalHours float64
		for _, t := range tasks {
			if t.StateID != state.ID {
				continue
			}
			entry.TasksCount++
			totalHours += now.Sub(t.UpdatedAt).Hours()
		}
		if entry.TasksCount == 0 {
			continue
		}

		avg := totalHours / float64(entry.TasksCount)
		entry.AvgTimeHours = round1(avg)
		entry.AvgTimeDays = round1(avg / 24)
		entry.Severity = severityFor(entry.TasksCount, avg)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := severityRank(entries[i].Severity), severityRank(entries[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return entries[i].TasksCount > entries[j].TasksCount
	})
	return entries
}

func severityFor(count int, avgHours float64) string {
	switch {
	case count > 10 && avgHours > 48:
		return SeverityHigh
	case count > 5 || avgHours > 24:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func severityRank(severity string) int {
	switch severity {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// computeWorkload summarizes per-user load over the board. Only users
// with at least one assigned task appear. The users map resolves the
// assignee IDs to display fields; assignees missing from the map, such
// as deleted accounts, are dropped.
func computeWorkload(tasks []*domain.Task, states []domain.WorkflowState, users map[uuid.UUID]*domain.User, now time.Time) []WorkloadEntry {
	final := domain.FinalState(states)
	weekStart := now.AddDate(0, 0, -7)

	type accum struct {
		entry      WorkloadEntry
		doneCount  int
		totalHours float64
	}
	byUser := make(map[uuid.UUID]*accum)

	for _, t := range tasks {
		if t.AssignedToID == nil {
			continue
		}
		id := *t.AssignedToID
		acc, ok := byUser[id]
		if !ok {
			u, found := users[id]
			if !found {
				continue
			}
			acc = &accum{entry: WorkloadEntry{
				UserID:   id,
				Username: u.Username,
				FullName: u.FullName(),
			}}
			byUser[id] = acc
		}

		if final != nil && t.StateID == final.ID {
			acc.doneCount++
			acc.totalHours += t.UpdatedAt.Sub(t.CreatedAt).Hours()
			if !t.UpdatedAt.Before(weekStart) {
				acc.entry.CompletedThisWeek++
			}
			continue
		}
		acc.entry.AssignedTasks++
	}

	entries := make([]WorkloadEntry, 0, len(byUser))
	for _, acc := range byUser {
		if acc.doneCount > 0 {
			avg := acc.totalHours / float64(acc.doneCount)
			acc.entry.AvgCompletionTimeHours = round1(avg)
			acc.entry.AvgCompletionTimeDays = round1(avg / 24)
		}
		acc.entry.Status = workloadStatus(acc.entry.AssignedTasks)
		entries = append(entries, acc.entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AssignedTasks != entries[j].AssignedTasks {
			return entries[i].AssignedTasks > entries[j].AssignedTasks
		}
		return entries[i].Username < entries[j].Username
	})
	return entries
}

func workloadStatus(assigned int) string {
	switch {
	case assigned > 15:
		return StatusOverloaded
	case assigned == 0:
		return StatusIdle
	case assigned < 3:
		return StatusUnderutilized
	default:
		return StatusBalanced
	}
}

// computeTimeInStates reports the time approximation keyed by state
// name. Unlike the bottleneck report it covers every state, with zero
// averages for states holding no tasks.
func computeTimeInStates(tasks []*domain.Task, states []domain.WorkflowState, now time.Time) map[string]StateTimeEntry {
	out := make(map[string]StateTimeEntry, len(states))
	for _, state := range states {
		entry := StateTimeEntry{StateOrder: state.Order}

		var totalHours float64
		for _, t := range tasks {
			if t.StateID != state.ID {
				continue
			}
			entry.TasksCount++
			totalHours += now.Sub(t.UpdatedAt).Hours()
		}
		if entry.TasksCount > 0 {
			avg := totalHours / float64(entry.TasksCount)
			entry.AvgHours = round1(avg)
			entry.AvgDays = round1(avg / 24)
		}
		out[state.Name] = entry
	}
	return out
}

// computeDailyTrends buckets creations and completions per UTC day over
// [start, start+days), oldest first.
func computeDailyTrends(tasks []*domain.Task, states []domain.WorkflowState, start time.Time, days int) []TrendEntry {
	final := domain.FinalState(states)

	entries := make([]TrendEntry, 0, days)
	day := start.UTC().Truncate(24 * time.Hour)
	for i := 0; i < days; i++ {
		next := day.AddDate(0, 0, 1)
		entry := TrendEntry{Date: day.Format("2006-01-02")}

		for _, t := range tasks {
			created := t.CreatedAt.UTC()
			if !created.Before(day) && created.Before(next) {
				entry.Created++
			}
			if final != nil && t.StateID == final.ID {
				completed := t.UpdatedAt.UTC()
				if !completed.Before(day) && completed.Before(next) {
					entry.Completed++
				}
			}
		}
		entry.Net = entry.Created - entry.Completed

		entries = append(entries, entry)
		day = next
	}
	return entries
}

// computeTasksByState counts tasks per state, optionally filtered to
// those created within [start, end]. The end date is inclusive through
// the last second of its day.
func computeTasksByState(tasks []*domain.Task, states []domain.WorkflowState, start, end *time.Time) []StateCountEntry {
	var cutoff *time.Time
	if end != nil {
		c := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
		cutoff = &c
	}

	entries := make([]StateCountEntry, 0, len(states))
	for _, state := range states {
		entry := StateCountEntry{
			StateID:    state.ID,
			StateName:  state.Name,
			StateOrder: state.Order,
		}
		for _, t := range tasks {
			if t.StateID != state.ID {
				continue
			}
			if start != nil && t.CreatedAt.Before(*start) {
				continue
			}
			if cutoff != nil && t.CreatedAt.After(*cutoff) {
				continue
			}
			entry.TasksCount++
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StateOrder < entries[j].StateOrder
	})
	return entries
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
