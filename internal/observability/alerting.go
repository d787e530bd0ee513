package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert conditions.
const (
	ConditionTaskOverdue      = "task_overdue"
	ConditionSubtaskOverdue   = "subtask_overdue"
	ConditionSubtaskDueSoon   = "subtask_due_soon"
	ConditionTaskReadyToClose = "task_ready_to_close"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	TaskID      string        `json:"task_id"`
	SubtaskID   string        `json:"subtask_id,omitempty"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	// DueSoonHours is the look-ahead for subtask_due_soon. Zero disables it.
	DueSoonHours int `yaml:"due_soon_hours" json:"due_soon_hours"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{DueSoonHours: 24}
}

// TaskSource supplies the task snapshot alerts are evaluated against.
// core.TaskManager satisfies it.
type TaskSource interface {
	GetAllTasks() ([]models.Task, error)
}

// AlertEngine evaluates alert conditions against the current tasks.
type AlertEngine interface {
	Evaluate(now time.Time) ([]Alert, error)
}

type alertEngine struct {
	tasks      TaskSource
	thresholds AlertThresholds
}

// NewAlertEngine creates a new AlertEngine over the given task source.
func NewAlertEngine(tasks TaskSource, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		tasks:      tasks,
		thresholds: thresholds,
	}
}

// Evaluate checks every open task and returns the triggered alerts ordered
// by severity, then ID.
func (ae *alertEngine) Evaluate(now time.Time) ([]Alert, error) {
	tasks, err := ae.tasks.GetAllTasks()
	if err != nil {
		return nil, fmt.Errorf("loading tasks for alerts: %w", err)
	}

	var alerts []Alert
	for i := range tasks {
		task := &tasks[i]
		if task.Status == models.StatusDone || task.Type == models.TaskTypeIdea {
			continue
		}
		alerts = append(alerts, ae.checkTaskOverdue(task, now)...)
		alerts = append(alerts, ae.checkSubtasks(task, now)...)
		alerts = append(alerts, ae.checkReadyToClose(task, now)...)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := severityRank(alerts[i].Severity), severityRank(alerts[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return alerts[i].ID < alerts[j].ID
	})
	return alerts, nil
}

func (ae *alertEngine) checkTaskOverdue(task *models.Task, now time.Time) []Alert {
	if task.Type != models.TaskTypeDeadline || core.TaskStatus(task, now) != core.DerivedOverdue {
		return nil
	}
	return []Alert{{
		ID:          "overdue-" + task.ID,
		Condition:   ConditionTaskOverdue,
		Severity:    SeverityHigh,
		TaskID:      task.ID,
		Message:     fmt.Sprintf("task %s %q passed its end date %s", task.ID, task.Title, task.EndDate.Format("2006-01-02 15:04")),
		TriggeredAt: now,
	}}
}

func (ae *alertEngine) checkSubtasks(task *models.Task, now time.Time) []Alert {
	if task.Type != models.TaskTypeDeadline {
		return nil
	}
	window := time.Duration(ae.thresholds.DueSoonHours) * time.Hour

	var alerts []Alert
	for i := range task.Subtasks {
		sub := &task.Subtasks[i]
		switch core.SubtaskStatus(task, sub, now) {
		case core.DerivedOverdue:
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("overdue-%s-%s", task.ID, sub.ID),
				Condition:   ConditionSubtaskOverdue,
				Severity:    SeverityHigh,
				TaskID:      task.ID,
				SubtaskID:   sub.ID,
				Message:     fmt.Sprintf("subtask %q of %s is overdue", sub.Title, task.ID),
				TriggeredAt: now,
			})
		case core.DerivedInProgress, core.DerivedUpcoming:
			if window <= 0 || sub.EndDate == nil {
				continue
			}
			left := sub.EndDate.Sub(now)
			if left <= 0 || left > window {
				continue
			}
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("due-soon-%s-%s", task.ID, sub.ID),
				Condition:   ConditionSubtaskDueSoon,
				Severity:    SeverityMedium,
				TaskID:      task.ID,
				SubtaskID:   sub.ID,
				Message:     fmt.Sprintf("subtask %q of %s is due in %s", sub.Title, task.ID, core.RemainingLabel(*sub.EndDate, now, false, core.DefaultLabels())),
				TriggeredAt: now,
			})
		}
	}
	return alerts
}

func (ae *alertEngine) checkReadyToClose(task *models.Task, now time.Time) []Alert {
	if len(task.Subtasks) == 0 || core.IsDoneLocked(task) {
		return nil
	}
	return []Alert{{
		ID:          "ready-" + task.ID,
		Condition:   ConditionTaskReadyToClose,
		Severity:    SeverityLow,
		TaskID:      task.ID,
		Message:     fmt.Sprintf("all %d subtasks of %s are complete; mark it done", len(task.Subtasks), task.ID),
		TriggeredAt: now,
	}}
}

func severityRank(s AlertSeverity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}
