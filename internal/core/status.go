package core

import (
	"time"

	"github.com/valter-silva-au/pulse/internal/calendar"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// DerivedStatus is the time-derived state of a task or subtask relative to a
// reference instant.
type DerivedStatus string

const (
	DerivedCompleted  DerivedStatus = "completed"
	DerivedOverdue    DerivedStatus = "overdue"
	DerivedUpcoming   DerivedStatus = "upcoming"
	DerivedInProgress DerivedStatus = "in_progress"
	DerivedDraft      DerivedStatus = "draft"
)

// Entity is the status-relevant projection of a task or subtask. Nil bounds
// mean the entity is undated on that side.
type Entity struct {
	Completed bool
	Start     *time.Time
	End       *time.Time
}

// SubtaskEntity projects a subtask onto its own completion flag and dates.
func SubtaskEntity(sub *models.Subtask) Entity {
	return Entity{Completed: sub.Completed, Start: sub.StartDate, End: sub.EndDate}
}

// TaskEntity projects a task onto its lifecycle flag and dates.
func TaskEntity(task *models.Task) Entity {
	return Entity{Completed: task.Status == models.StatusDone, Start: task.StartDate, End: task.EndDate}
}

// DeriveStatus classifies a dated entity. Completion always wins, then
// overdue, then upcoming; everything else is in progress.
func DeriveStatus(e Entity, now time.Time) DerivedStatus {
	switch {
	case e.Completed:
		return DerivedCompleted
	case e.End != nil && now.After(*e.End):
		return DerivedOverdue
	case e.Start != nil && now.Before(*e.Start):
		return DerivedUpcoming
	default:
		return DerivedInProgress
	}
}

// TimeProgress returns the share of iv still remaining at now, as a
// percentage in [0,100]. It counts down: 100 before the start, 0 at or after
// the end.
func TimeProgress(iv calendar.Interval, now time.Time) float64 {
	if !now.Before(iv.End) {
		return 0
	}
	if now.Before(iv.Start) {
		return 100
	}
	total := iv.End.Sub(iv.Start)
	if total <= 0 {
		return 0
	}
	p := 100 * float64(iv.End.Sub(now)) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// SubtaskProgress returns the time progress of a dated subtask. The second
// result is false when the subtask has no usable interval.
func SubtaskProgress(sub *models.Subtask, now time.Time) (float64, bool) {
	iv, err := SubtaskInterval(sub)
	if err != nil {
		return 0, false
	}
	return TimeProgress(iv, now), true
}

// TaskProgress returns the time progress of a Deadline task.
func TaskProgress(task *models.Task, now time.Time) (float64, bool) {
	iv, err := TaskInterval(task)
	if err != nil {
		return 0, false
	}
	return TimeProgress(iv, now), true
}

// CompletionPercent returns the share of completed subtasks, 0 when the task
// has none.
func CompletionPercent(task *models.Task) int {
	if len(task.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, s := range task.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done * 100 / len(task.Subtasks)
}

// ActiveToday reports whether a Recurring task recurs on the day of now.
func ActiveToday(task *models.Task, now time.Time) bool {
	return task.Type == models.TaskTypeRecurring && task.RecursOn(calendar.WeekdayOf(now))
}

// SubtaskStatus is the single per-subtask classification shared by buckets,
// labels and alerts.
//
// Recurring subtasks are never overdue: they are in progress on a recurrence
// day (or when started manually) and upcoming otherwise.
func SubtaskStatus(task *models.Task, sub *models.Subtask, now time.Time) DerivedStatus {
	switch task.Type {
	case models.TaskTypeDeadline:
		return DeriveStatus(SubtaskEntity(sub), now)
	case models.TaskTypeRecurring:
		switch {
		case sub.Completed:
			return DerivedCompleted
		case sub.ManuallyStarted || ActiveToday(task, now):
			return DerivedInProgress
		default:
			return DerivedUpcoming
		}
	default:
		return DerivedDraft
	}
}

// TaskStatus classifies a whole task.
func TaskStatus(task *models.Task, now time.Time) DerivedStatus {
	if task.Status == models.StatusDone {
		return DerivedCompleted
	}
	switch task.Type {
	case models.TaskTypeDeadline:
		return DeriveStatus(TaskEntity(task), now)
	case models.TaskTypeRecurring:
		if ActiveToday(task, now) || hasStartedSubtask(task) {
			return DerivedInProgress
		}
		return DerivedUpcoming
	default:
		return DerivedDraft
	}
}

// IsDoneLocked reports whether a task must not be marked done yet: a
// Deadline or Recurring task with at least one open subtask.
func IsDoneLocked(task *models.Task) bool {
	if task.Type == models.TaskTypeIdea {
		return false
	}
	for _, s := range task.Subtasks {
		if !s.Completed {
			return true
		}
	}
	return false
}
