// Package calendar provides day-granularity time helpers: truncation to local
// midnight, weekday extraction, inclusive intervals and the week/month
// windows used for aggregation.
//
// All helpers use the location carried by their arguments. No timezone
// conversion is performed.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Interval is an inclusive span of time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// InvalidRangeError is returned when an explicit interval ends before it starts.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s is before start %s",
		e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

// NewInterval builds an Interval, rejecting ranges whose end precedes the start.
func NewInterval(start, end time.Time) (Interval, error) {
	if end.Before(start) {
		return Interval{}, &InvalidRangeError{Start: start, End: end}
	}
	return Interval{Start: start, End: end}, nil
}

// Duration returns the length of the interval.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// DayFloor truncates t to midnight of its calendar day.
func DayFloor(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return DayFloor(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekdayOf returns the weekday of t (Sunday = 0).
func WeekdayOf(t time.Time) time.Weekday {
	return t.Weekday()
}

// DaysBetween returns every calendar day from start to end, both inclusive,
// as midnight instants.
func DaysBetween(start, end time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}
	first := DayFloor(start)
	last := DayFloor(end)

	var days []time.Time
	// AddDate keeps the walk on midnight across DST changes.
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// Overlaps reports whether two intervals share at least one instant.
func Overlaps(a, b Interval) bool {
	return !a.Start.After(b.End) && !b.Start.After(a.End)
}

// Within reports whether day falls inside iv when both are reduced to
// calendar days.
func Within(day time.Time, iv Interval) bool {
	d := DayFloor(day)
	return !d.Before(DayFloor(iv.Start)) && !d.After(DayFloor(iv.End))
}

// WeekWindow returns the week containing ref, beginning on weekStartsOn.
func WeekWindow(ref time.Time, weekStartsOn time.Weekday) Interval {
	day := DayFloor(ref)
	offset := (int(day.Weekday()) - int(weekStartsOn) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return Interval{
		Start: start,
		End:   start.AddDate(0, 0, 7).Add(-time.Nanosecond),
	}
}

// MonthWindow returns the calendar month containing ref.
func MonthWindow(ref time.Time) Interval {
	y, m, _ := ref.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
	return Interval{
		Start: start,
		End:   start.AddDate(0, 1, 0).Add(-time.Nanosecond),
	}
}

// ParseWeekday accepts full or three-letter English weekday names
// (case-insensitive) or the digits 0-6.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return time.Weekday(s[0] - '0'), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
