package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/pulse/internal/calendar"
)

var dateLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// parseDateFlag parses a --start/--end value in local time. A bare date is
// the start of that day, or its last instant when endOfDay is set. An empty
// value yields nil.
func parseDateFlag(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" && endOfDay {
			t = calendar.EndOfDay(t)
		}
		return &t, nil
	}
	return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD or YYYY-MM-DDTHH:MM)", s)
}

// parseWeekdays parses a comma-separated weekday list such as "mon,wed,fri".
func parseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := calendar.ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

func formatWeekdays(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ",")
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
