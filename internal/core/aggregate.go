package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/pulse/internal/calendar"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// Window selects the span of days an aggregation covers.
type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// Windows lists every window in display order.
var Windows = []Window{WindowToday, WindowWeek, WindowMonth, WindowAll}

// ParseWindow converts user input into a Window.
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Windows {
		if w == known {
			return w, nil
		}
	}
	return "", fmt.Errorf("invalid window %q: must be one of today, week, month, all", s)
}

// TypeFilter restricts aggregation and listing to one task variant.
type TypeFilter string

const (
	FilterAll       TypeFilter = "all"
	FilterDeadline  TypeFilter = "deadline"
	FilterRecurring TypeFilter = "recurring"
	FilterIdea      TypeFilter = "idea"
)

// TypeFilters lists every filter in display order.
var TypeFilters = []TypeFilter{FilterAll, FilterDeadline, FilterRecurring, FilterIdea}

// ParseTypeFilter converts user input into a TypeFilter. An empty string
// means FilterAll.
func ParseTypeFilter(s string) (TypeFilter, error) {
	f := TypeFilter(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FilterAll, nil
	}
	for _, known := range TypeFilters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid type filter %q: must be one of all, deadline, recurring, idea", s)
}

// Matches reports whether a task of type t passes the filter.
func (f TypeFilter) Matches(t models.TaskType) bool {
	return f == FilterAll || f == "" || string(f) == string(t)
}

// BucketItem is one task's share of a status bucket.
type BucketItem struct {
	TaskID       string `json:"task_id"`
	Title        string `json:"title"`
	SubtaskCount int    `json:"subtask_count"`
}

// BucketView holds the subtasks of one derived status, grouped by task.
type BucketView struct {
	Count int          `json:"count"`
	Items []BucketItem `json:"items"`
}

// AggregateResult is the per-status breakdown of the subtasks in a window.
type AggregateResult struct {
	Total      int        `json:"total"`
	Upcoming   BucketView `json:"upcoming"`
	InProgress BucketView `json:"in_progress"`
	Done       BucketView `json:"done"`
	Overdue    BucketView `json:"overdue"`
}

// WeekBadge is a completed-versus-total counter for summary badges.
type WeekBadge struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Engine computes window aggregates. It holds only calendar conventions;
// every call is a pure function of its arguments.
type Engine struct {
	weekStartsOn time.Weekday
}

// NewEngine creates an Engine whose weeks begin on weekStartsOn.
func NewEngine(weekStartsOn time.Weekday) *Engine {
	return &Engine{weekStartsOn: weekStartsOn}
}

// WeekStartsOn returns the first day of the engine's weeks.
func (e *Engine) WeekStartsOn() time.Weekday {
	return e.weekStartsOn
}

// WindowInterval returns the span of w around now. The second result is
// false for WindowAll, which has no bounds.
func (e *Engine) WindowInterval(w Window, now time.Time) (calendar.Interval, bool) {
	switch w {
	case WindowToday:
		return calendar.Interval{Start: calendar.DayFloor(now), End: calendar.EndOfDay(now)}, true
	case WindowWeek:
		return calendar.WeekWindow(now, e.weekStartsOn), true
	case WindowMonth:
		return calendar.MonthWindow(now), true
	default:
		return calendar.Interval{}, false
	}
}

type subtaskKey struct {
	task    int
	subtask string
}

type collectedSubtask struct {
	task    int
	subtask int
}

// subtaskCollector gathers (task, subtask) pairs once each, in first-seen order.
type subtaskCollector struct {
	seen  map[subtaskKey]struct{}
	pairs []collectedSubtask
}

func newSubtaskCollector() *subtaskCollector {
	return &subtaskCollector{seen: make(map[subtaskKey]struct{})}
}

func (c *subtaskCollector) add(taskIdx int, sub *models.Subtask, subIdx int) {
	id := sub.ID
	if id == "" {
		id = "#" + strconv.Itoa(subIdx)
	}
	key := subtaskKey{task: taskIdx, subtask: id}
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.pairs = append(c.pairs, collectedSubtask{task: taskIdx, subtask: subIdx})
}

// Aggregate classifies every subtask that falls in window and folds the
// results into status buckets.
//
// Idea tasks never contribute. For WindowAll every other subtask counts once
// regardless of dates; for the dated windows a subtask counts once if it is
// relevant on at least one day of the window.
func (e *Engine) Aggregate(tasks []models.Task, window Window, filter TypeFilter, now time.Time) AggregateResult {
	c := newSubtaskCollector()

	switch window {
	case WindowAll:
		for ti := range tasks {
			task := &tasks[ti]
			if !filter.Matches(task.Type) || task.Type == models.TaskTypeIdea {
				continue
			}
			for si := range task.Subtasks {
				c.add(ti, &task.Subtasks[si], si)
			}
		}
	case WindowToday:
		e.collectDay(c, tasks, filter, calendar.DayFloor(now))
	default:
		iv, ok := e.WindowInterval(window, now)
		if !ok {
			break
		}
		days, err := calendar.DaysBetween(iv.Start, iv.End)
		if err != nil {
			break
		}
		for _, day := range days {
			e.collectDay(c, tasks, filter, day)
		}
	}

	return fold(tasks, c.pairs, now)
}

func (e *Engine) collectDay(c *subtaskCollector, tasks []models.Task, filter TypeFilter, day time.Time) {
	for ti := range tasks {
		task := &tasks[ti]
		if !filter.Matches(task.Type) {
			continue
		}
		for si := range task.Subtasks {
			if IsSubtaskRelevantToDay(task, &task.Subtasks[si], day) {
				c.add(ti, &task.Subtasks[si], si)
			}
		}
	}
}

func fold(tasks []models.Task, pairs []collectedSubtask, now time.Time) AggregateResult {
	res := AggregateResult{
		Upcoming:   BucketView{Items: []BucketItem{}},
		InProgress: BucketView{Items: []BucketItem{}},
		Done:       BucketView{Items: []BucketItem{}},
		Overdue:    BucketView{Items: []BucketItem{}},
	}
	// Position of each task within each bucket's Items.
	itemIndex := make(map[*BucketView]map[int]int)

	for _, p := range pairs {
		task := &tasks[p.task]
		var bucket *BucketView
		switch SubtaskStatus(task, &task.Subtasks[p.subtask], now) {
		case DerivedUpcoming:
			bucket = &res.Upcoming
		case DerivedInProgress:
			bucket = &res.InProgress
		case DerivedCompleted:
			bucket = &res.Done
		case DerivedOverdue:
			bucket = &res.Overdue
		default:
			continue
		}

		res.Total++
		bucket.Count++
		idx, ok := itemIndex[bucket]
		if !ok {
			idx = make(map[int]int)
			itemIndex[bucket] = idx
		}
		if pos, ok := idx[p.task]; ok {
			bucket.Items[pos].SubtaskCount++
			continue
		}
		idx[p.task] = len(bucket.Items)
		bucket.Items = append(bucket.Items, BucketItem{TaskID: task.ID, Title: task.Title, SubtaskCount: 1})
	}

	return res
}

// WeekBadgeCounts counts the work of the week containing weekRef.
//
// Recurring tasks that recur on any day of the week add their open subtasks
// to Total and never add to Completed; outside the recurrence only manually
// started subtasks count. Deadline subtasks whose interval overlaps the week
// add to Total, and to Completed when done. Idea tasks and undated Deadline
// subtasks do not count.
func (e *Engine) WeekBadgeCounts(tasks []models.Task, weekRef time.Time) WeekBadge {
	week := calendar.WeekWindow(weekRef, e.weekStartsOn)
	return badgeCounts(tasks, week)
}

// TodayBadgeCounts applies the WeekBadgeCounts rules to the single day of
// now. Manually started subtasks count as today's work.
func (e *Engine) TodayBadgeCounts(tasks []models.Task, now time.Time) WeekBadge {
	var badge WeekBadge
	for ti := range tasks {
		task := &tasks[ti]
		switch task.Type {
		case models.TaskTypeRecurring:
			for si := range task.Subtasks {
				sub := &task.Subtasks[si]
				if !sub.Completed && IsSubtaskRelevantToDay(task, sub, now) {
					badge.Total++
				}
			}
		case models.TaskTypeDeadline:
			for si := range task.Subtasks {
				sub := &task.Subtasks[si]
				if !IsSubtaskRelevantToDay(task, sub, now) {
					continue
				}
				badge.Total++
				if sub.Completed {
					badge.Completed++
				}
			}
		}
	}
	return badge
}

func badgeCounts(tasks []models.Task, window calendar.Interval) WeekBadge {
	var badge WeekBadge
	days, _ := calendar.DaysBetween(window.Start, window.End)

	for ti := range tasks {
		task := &tasks[ti]
		switch task.Type {
		case models.TaskTypeRecurring:
			recurs := recursWithin(task, days)
			for _, s := range task.Subtasks {
				if !s.Completed && (recurs || s.ManuallyStarted) {
					badge.Total++
				}
			}
		case models.TaskTypeDeadline:
			for si := range task.Subtasks {
				iv, err := SubtaskInterval(&task.Subtasks[si])
				if err != nil || !calendar.Overlaps(iv, window) {
					continue
				}
				badge.Total++
				if task.Subtasks[si].Completed {
					badge.Completed++
				}
			}
		}
	}
	return badge
}

func recursWithin(task *models.Task, days []time.Time) bool {
	for _, d := range days {
		if task.RecursOn(calendar.WeekdayOf(d)) {
			return true
		}
	}
	return false
}
