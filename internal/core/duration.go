package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/pulse/pkg/models"
)

// LabelSet is the wording used by RemainingLabel. Wording is a host concern;
// only the structure of the label is fixed.
type LabelSet struct {
	Completed    string
	Overdue      string
	DaySuffix    string
	HourSuffix   string
	MinuteSuffix string
}

// DefaultLabels returns the English short-form labels ("2d 3h 5m").
func DefaultLabels() LabelSet {
	return LabelSet{
		Completed:    "Completed",
		Overdue:      "Overdue",
		DaySuffix:    "d",
		HourSuffix:   "h",
		MinuteSuffix: "m",
	}
}

// RemainingLabel renders the time left until end as coarse days, hours and
// minutes. Units are floored and leading zero units are dropped; once a unit
// is shown every smaller unit is shown too.
func RemainingLabel(end, now time.Time, completed bool, labels LabelSet) string {
	if completed {
		return labels.Completed
	}
	distance := end.Sub(now)
	if distance < 0 {
		return labels.Overdue
	}

	days := int64(distance / (24 * time.Hour))
	distance -= time.Duration(days) * 24 * time.Hour
	hours := int64(distance / time.Hour)
	distance -= time.Duration(hours) * time.Hour
	minutes := int64(distance / time.Minute)

	var parts []string
	if days > 0 {
		parts = append(parts, strconv.FormatInt(days, 10)+labels.DaySuffix)
	}
	if days > 0 || hours > 0 {
		parts = append(parts, strconv.FormatInt(hours, 10)+labels.HourSuffix)
	}
	if len(parts) > 0 || minutes > 0 {
		parts = append(parts, strconv.FormatInt(minutes, 10)+labels.MinuteSuffix)
	}
	if len(parts) == 0 {
		return "0" + labels.MinuteSuffix
	}
	return strings.Join(parts, " ")
}

// SubtaskRemainingLabel is RemainingLabel for a subtask's own end date. The
// second result is false when the subtask has no end date.
func SubtaskRemainingLabel(sub *models.Subtask, now time.Time, labels LabelSet) (string, bool) {
	if sub.EndDate == nil {
		if sub.Completed {
			return labels.Completed, true
		}
		return "", false
	}
	return RemainingLabel(*sub.EndDate, now, sub.Completed, labels), true
}
