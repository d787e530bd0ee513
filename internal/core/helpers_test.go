package core

import (
	"time"

	"github.com/valter-silva-au/pulse/pkg/models"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func deadlineTask(id string, start, end time.Time, subs ...models.Subtask) models.Task {
	return models.Task{
		ID:        id,
		Title:     "deadline " + id,
		Status:    models.StatusToDo,
		Type:      models.TaskTypeDeadline,
		CreatedAt: start,
		StartDate: ptr(start),
		EndDate:   ptr(end),
		Subtasks:  subs,
	}
}

func recurringTask(id string, days []time.Weekday, subs ...models.Subtask) models.Task {
	return models.Task{
		ID:            id,
		Title:         "recurring " + id,
		Status:        models.StatusToDo,
		Type:          models.TaskTypeRecurring,
		CreatedAt:     at(2023, 12, 1, 9),
		RecurringDays: days,
		Subtasks:      subs,
	}
}

func ideaTask(id string, created time.Time, subs ...models.Subtask) models.Task {
	return models.Task{
		ID:        id,
		Title:     "idea " + id,
		Status:    models.StatusToDo,
		Type:      models.TaskTypeIdea,
		CreatedAt: created,
		Subtasks:  subs,
	}
}

func datedSub(id string, start, end time.Time) models.Subtask {
	return models.Subtask{ID: id, Title: "sub " + id, StartDate: ptr(start), EndDate: ptr(end)}
}

func plainSub(id string) models.Subtask {
	return models.Subtask{ID: id, Title: "sub " + id}
}

func doneSub(s models.Subtask) models.Subtask {
	s.Completed = true
	return s
}
