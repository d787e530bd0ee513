package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/pulse/pkg/models"
)

// SortMode selects the ordering of task lists.
type SortMode string

const (
	SortCreated      SortMode = "created"
	SortDurationAsc  SortMode = "duration_asc"
	SortDurationDesc SortMode = "duration_desc"
)

// ParseSortMode converts user input into a SortMode. An empty string means
// SortCreated.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortCreated, nil
	case SortCreated, SortDurationAsc, SortDurationDesc:
		return m, nil
	default:
		return "", fmt.Errorf("invalid sort mode %q: must be one of created, duration_asc, duration_desc", s)
	}
}

// SortAndFilterAll returns the tasks matching filter in display order. The
// input slice is not modified.
//
// Done tasks always come after the rest, and each group is ordered newest
// first. Duration modes then reorder the Deadline tasks of each group by
// EndDate-StartDate, using only the positions Deadline tasks already hold so
// other tasks stay where they are.
func SortAndFilterAll(tasks []models.Task, filter TypeFilter, mode SortMode) []models.Task {
	var open, done []models.Task
	for _, t := range tasks {
		if !filter.Matches(t.Type) {
			continue
		}
		if t.Status == models.StatusDone {
			done = append(done, t)
		} else {
			open = append(open, t)
		}
	}

	for _, group := range [][]models.Task{open, done} {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.After(group[j].CreatedAt)
		})
		if mode == SortDurationAsc || mode == SortDurationDesc {
			sortDeadlineSlots(group, mode == SortDurationDesc)
		}
	}

	out := make([]models.Task, 0, len(open)+len(done))
	out = append(out, open...)
	return append(out, done...)
}

// sortDeadlineSlots sorts the Deadline tasks of group by duration in place,
// leaving every other task at its index.
func sortDeadlineSlots(group []models.Task, descending bool) {
	var slots []int
	var durations []time.Duration
	for i := range group {
		iv, err := TaskInterval(&group[i])
		if err != nil {
			continue
		}
		slots = append(slots, i)
		durations = append(durations, iv.Duration())
	}
	if len(slots) < 2 {
		return
	}

	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if descending {
			return durations[order[a]] > durations[order[b]]
		}
		return durations[order[a]] < durations[order[b]]
	})

	picked := make([]models.Task, len(slots))
	for i, o := range order {
		picked[i] = group[slots[o]]
	}
	for i, slot := range slots {
		group[slot] = picked[i]
	}
}
