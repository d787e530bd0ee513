package observability

import (
	"fmt"
	"time"
)

// Metrics holds activity counters derived from the event log.
type Metrics struct {
	TasksCreated      int            `json:"tasks_created"`
	TasksDeleted      int            `json:"tasks_deleted"`
	TasksCompleted    int            `json:"tasks_completed"`
	TasksByType       map[string]int `json:"tasks_by_type"`
	StatusTransitions map[string]int `json:"status_transitions"`
	SubtasksAdded     int            `json:"subtasks_added"`
	SubtasksCompleted int            `json:"subtasks_completed"`
	SubtasksReopened  int            `json:"subtasks_reopened"`
	SubtasksStarted   int            `json:"subtasks_started"`
	SummariesViewed   int            `json:"summaries_viewed"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		TasksByType:       make(map[string]int),
		StatusTransitions: make(map[string]int),
		EventCount:        len(events),
	}

	for i, event := range events {
		t := event.Time
		if i == 0 {
			m.OldestEvent = &t
		}
		m.NewestEvent = &t

		switch event.Type {
		case EventTaskCreated:
			m.TasksCreated++
			if taskType, ok := event.Data["type"].(string); ok {
				m.TasksByType[taskType]++
			}
		case EventTaskDeleted:
			m.TasksDeleted++
		case EventTaskStatusChanged:
			status, _ := event.Data["new_status"].(string)
			if status == "" {
				continue
			}
			m.StatusTransitions[status]++
			if status == "done" {
				m.TasksCompleted++
			}
		case EventSubtaskAdded:
			m.SubtasksAdded++
		case EventSubtaskToggled:
			if completed, ok := event.Data["completed"].(bool); ok {
				if completed {
					m.SubtasksCompleted++
				} else {
					m.SubtasksReopened++
				}
			}
		case EventSubtaskStarted:
			m.SubtasksStarted++
		case EventSummaryViewed:
			m.SummariesViewed++
		}
	}

	return m, nil
}
