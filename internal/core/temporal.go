package core

import (
	"errors"

	"github.com/valter-silva-au/pulse/internal/calendar"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// ErrMissingTemporalData reports that an entity lacks the dates a particular
// classification needs. Aggregation absorbs it by skipping the record.
var ErrMissingTemporalData = errors.New("missing temporal data")

// TaskInterval returns the overall interval of a Deadline task.
func TaskInterval(task *models.Task) (calendar.Interval, error) {
	if task.Type != models.TaskTypeDeadline || task.StartDate == nil || task.EndDate == nil {
		return calendar.Interval{}, ErrMissingTemporalData
	}
	iv, err := calendar.NewInterval(*task.StartDate, *task.EndDate)
	if err != nil {
		return calendar.Interval{}, ErrMissingTemporalData
	}
	return iv, nil
}

// SubtaskInterval returns the interval of a dated subtask. Subtasks with a
// missing bound, or with bounds out of order, have no interval.
func SubtaskInterval(sub *models.Subtask) (calendar.Interval, error) {
	if sub.StartDate == nil || sub.EndDate == nil {
		return calendar.Interval{}, ErrMissingTemporalData
	}
	iv, err := calendar.NewInterval(*sub.StartDate, *sub.EndDate)
	if err != nil {
		return calendar.Interval{}, ErrMissingTemporalData
	}
	return iv, nil
}
