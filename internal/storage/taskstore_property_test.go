package storage

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/valter-silva-au/pulse/pkg/models"
	"pgregory.net/rapid"
)

var genBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func genInstant(t *rapid.T, label string) time.Time {
	return genBase.Add(time.Duration(rapid.IntRange(0, 60*24*365).Draw(t, label)) * time.Minute)
}

func genAlphaString(t *rapid.T, label string, minLen, maxLen int) string {
	return rapid.StringMatching(fmt.Sprintf(`[a-z]{%d,%d}`, minLen, maxLen)).Draw(t, label)
}

func genStoredTask(t *rapid.T, id string) models.Task {
	taskType := rapid.SampledFrom([]models.TaskType{
		models.TaskTypeDeadline, models.TaskTypeRecurring, models.TaskTypeIdea,
	}).Draw(t, id+"type")

	task := models.Task{
		ID:        id,
		Title:     genAlphaString(t, id+"title", 1, 30),
		Status:    rapid.SampledFrom([]models.TaskStatus{models.StatusToDo, models.StatusInProgress, models.StatusDone}).Draw(t, id+"status"),
		Type:      taskType,
		CreatedAt: genInstant(t, id+"created"),
		Subtasks:  []models.Subtask{},
	}
	switch taskType {
	case models.TaskTypeDeadline:
		start := genInstant(t, id+"start")
		end := start.Add(time.Hour * time.Duration(rapid.IntRange(1, 500).Draw(t, id+"span")))
		task.StartDate, task.EndDate = &start, &end
	case models.TaskTypeRecurring:
		task.RecurringDays = []time.Weekday{time.Weekday(rapid.IntRange(0, 6).Draw(t, id+"day"))}
	}

	n := rapid.IntRange(0, 3).Draw(t, id+"nSubs")
	for i := 0; i < n; i++ {
		sub := models.Subtask{
			ID:              fmt.Sprintf("%s-%d", id, i),
			Title:           genAlphaString(t, id+"subTitle", 1, 20),
			Completed:       rapid.Bool().Draw(t, id+"subDone"),
			ManuallyStarted: rapid.Bool().Draw(t, id+"subStarted"),
		}
		if taskType == models.TaskTypeDeadline && rapid.Bool().Draw(t, id+"subDated") {
			s := genInstant(t, id+"subStart")
			e := s.Add(time.Hour)
			sub.StartDate, sub.EndDate = &s, &e
		}
		task.Subtasks = append(task.Subtasks, sub)
	}
	return task
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Saving and reloading the registry preserves every task.
func TestProperty_TaskStoreRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dir, err := os.MkdirTemp("", "taskstore-property-*")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(dir)

		store := NewTaskStore(dir)
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		want := make(map[string]models.Task, n)
		for i := 0; i < n; i++ {
			task := genStoredTask(rt, fmt.Sprintf("TASK-%05d", i+1))
			if err := store.Add(task); err != nil {
				rt.Fatalf("Add: %v", err)
			}
			want[task.ID] = task
		}
		if err := store.Save(); err != nil {
			rt.Fatalf("Save: %v", err)
		}

		reloaded := NewTaskStore(dir)
		if err := reloaded.Load(); err != nil {
			rt.Fatalf("Load: %v", err)
		}
		if got := len(reloaded.All()); got != n {
			rt.Fatalf("expected %d tasks after reload, got %d", n, got)
		}
		for id, w := range want {
			g, ok := reloaded.Get(id)
			if !ok {
				rt.Fatalf("task %s missing after reload", id)
			}
			if g.Title != w.Title || g.Status != w.Status || g.Type != w.Type || !g.CreatedAt.Equal(w.CreatedAt) {
				rt.Fatalf("task %s header changed: %+v vs %+v", id, g, w)
			}
			if !sameInstant(g.StartDate, w.StartDate) || !sameInstant(g.EndDate, w.EndDate) {
				rt.Fatalf("task %s dates changed", id)
			}
			if len(g.RecurringDays) != len(w.RecurringDays) {
				rt.Fatalf("task %s recurring days changed", id)
			}
			if len(g.Subtasks) != len(w.Subtasks) {
				rt.Fatalf("task %s has %d subtasks, want %d", id, len(g.Subtasks), len(w.Subtasks))
			}
			for i := range w.Subtasks {
				gs, ws := g.Subtasks[i], w.Subtasks[i]
				if gs.ID != ws.ID || gs.Completed != ws.Completed || gs.ManuallyStarted != ws.ManuallyStarted ||
					!sameInstant(gs.StartDate, ws.StartDate) || !sameInstant(gs.EndDate, ws.EndDate) {
					rt.Fatalf("subtask %s changed: %+v vs %+v", ws.ID, gs, ws)
				}
			}
		}
	})
}
