package core

import (
	"time"

	"github.com/valter-silva-au/pulse/internal/calendar"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// IsRelevantToDay reports whether task is active on the calendar day
// containing day.
//
// A Recurring task is relevant on its recurrence days and on any day one of
// its open subtasks has been started manually.
//
// A Deadline task is relevant through its subtasks only: a subtask that was
// started manually, or whose own interval covers the day. A Deadline task
// without dated subtasks is therefore never relevant to any day.
func IsRelevantToDay(task *models.Task, day time.Time) bool {
	switch task.Type {
	case models.TaskTypeIdea:
		return calendar.SameDay(task.CreatedAt, day)
	case models.TaskTypeRecurring:
		return task.RecursOn(calendar.WeekdayOf(day)) || hasStartedSubtask(task)
	case models.TaskTypeDeadline:
		for i := range task.Subtasks {
			if deadlineSubtaskRelevant(&task.Subtasks[i], day) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// IsSubtaskRelevantToDay reports whether sub, a subtask of task, is active on
// the calendar day containing day. Recurring subtasks inherit the parent's
// recurrence unless started manually; Idea subtasks are never relevant.
func IsSubtaskRelevantToDay(task *models.Task, sub *models.Subtask, day time.Time) bool {
	switch task.Type {
	case models.TaskTypeDeadline:
		return deadlineSubtaskRelevant(sub, day)
	case models.TaskTypeRecurring:
		return sub.ManuallyStarted || task.RecursOn(calendar.WeekdayOf(day))
	default:
		return false
	}
}

func deadlineSubtaskRelevant(sub *models.Subtask, day time.Time) bool {
	if sub.ManuallyStarted {
		return true
	}
	iv, err := SubtaskInterval(sub)
	if err != nil {
		return false
	}
	return calendar.Within(day, iv)
}

func hasStartedSubtask(task *models.Task) bool {
	for _, s := range task.Subtasks {
		if s.ManuallyStarted && !s.Completed {
			return true
		}
	}
	return false
}

// RelevantTasks returns the tasks relevant to day, in input order.
func RelevantTasks(tasks []models.Task, day time.Time) []models.Task {
	var out []models.Task
	for i := range tasks {
		if IsRelevantToDay(&tasks[i], day) {
			out = append(out, tasks[i])
		}
	}
	return out
}
