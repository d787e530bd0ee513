package models

import "time"

// TaskType is the discriminant of the task variants.
type TaskType string

const (
	TaskTypeDeadline  TaskType = "deadline"
	TaskTypeRecurring TaskType = "recurring"
	TaskTypeIdea      TaskType = "idea"
)

// Valid reports whether t is one of the known task variants.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeDeadline, TaskTypeRecurring, TaskTypeIdea:
		return true
	}
	return false
}

// TaskStatus is the user-controlled lifecycle flag of a task. It is distinct
// from the time-derived status computed by the engine.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Attachment is an opaque file reference carried by a subtask.
type Attachment struct {
	Name string `yaml:"name" json:"name"`
	URI  string `yaml:"uri" json:"uri"`
}

// Subtask is one step of a task.
//
// Deadline subtasks may carry their own StartDate/EndDate. Recurring subtasks
// carry no dates; ManuallyStarted marks them active outside their recurrence
// day.
type Subtask struct {
	ID              string       `yaml:"id" json:"id"`
	Title           string       `yaml:"title" json:"title"`
	Description     string       `yaml:"description,omitempty" json:"description,omitempty"`
	Completed       bool         `yaml:"completed" json:"completed"`
	StartDate       *time.Time   `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate         *time.Time   `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	ManuallyStarted bool         `yaml:"manually_started,omitempty" json:"manually_started,omitempty"`
	Attachments     []Attachment `yaml:"attachments,omitempty" json:"attachments,omitempty"`
}

// Task is a tracked work item. Type selects which of the variant fields are
// meaningful: Deadline uses StartDate/EndDate, Recurring uses RecurringDays,
// Idea uses neither.
type Task struct {
	ID            string         `yaml:"id" json:"id"`
	Title         string         `yaml:"title" json:"title"`
	Description   string         `yaml:"description,omitempty" json:"description,omitempty"`
	Status        TaskStatus     `yaml:"status" json:"status"`
	Type          TaskType       `yaml:"type" json:"type"`
	CreatedAt     time.Time      `yaml:"created_at" json:"created_at"`
	StartDate     *time.Time     `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate       *time.Time     `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	RecurringDays []time.Weekday `yaml:"recurring_days,omitempty" json:"recurring_days,omitempty"`
	Subtasks      []Subtask      `yaml:"subtasks" json:"subtasks"`
}

// RecursOn reports whether the task's recurrence includes weekday d.
func (t *Task) RecursOn(d time.Weekday) bool {
	for _, rd := range t.RecurringDays {
		if rd == d {
			return true
		}
	}
	return false
}

// SubtaskIndex returns the position of the subtask with the given ID, or -1.
func (t *Task) SubtaskIndex(subtaskID string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			return i
		}
	}
	return -1
}
