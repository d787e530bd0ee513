package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/valter-silva-au/pulse/internal/calendar"
	"github.com/valter-silva-au/pulse/pkg/models"
)

var (
	// ErrTaskNotFound is returned when no task has the requested ID.
	ErrTaskNotFound = errors.New("task not found")
	// ErrSubtaskNotFound is returned when a task has no subtask with the requested ID.
	ErrSubtaskNotFound = errors.New("subtask not found")
	// ErrDoneLocked is returned when a task is marked done while it still has
	// open subtasks.
	ErrDoneLocked = errors.New("task has open subtasks")
	// ErrInvalidTask wraps every input validation failure.
	ErrInvalidTask = errors.New("invalid task")
)

// TaskStore is the subset of storage.TaskStoreManager that TaskManager needs.
// Defining it here keeps core independent of the storage package.
type TaskStore interface {
	Load() error
	Save() error
	Add(task models.Task) error
	Update(task models.Task) error
	Remove(taskID string) error
	Get(taskID string) (models.Task, bool)
	All() []models.Task
}

// CreateTaskOpts describes a new task.
type CreateTaskOpts struct {
	Title         string
	Description   string
	Type          models.TaskType
	StartDate     *time.Time
	EndDate       *time.Time
	RecurringDays []time.Weekday
}

// SubtaskOpts describes a new subtask.
type SubtaskOpts struct {
	Title       string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Attachments []models.Attachment
}

// TaskManager defines the interface for task lifecycle operations.
type TaskManager interface {
	CreateTask(opts CreateTaskOpts) (*models.Task, error)
	GetTask(taskID string) (*models.Task, error)
	GetAllTasks() ([]models.Task, error)
	DeleteTask(taskID string) error
	UpdateTaskStatus(taskID string, status models.TaskStatus) error
	AddSubtask(taskID string, opts SubtaskOpts) (*models.Subtask, error)
	ToggleSubtask(taskID, subtaskID string) (*models.Subtask, error)
	StartSubtask(taskID, subtaskID string) (*models.Subtask, error)
}

// taskManager implements TaskManager on top of a TaskStore. Every mutation
// reloads the store, applies the change and saves, all while holding an
// exclusive lock on tasks.yaml.lock.
type taskManager struct {
	store    TaskStore
	ids      TaskIDGenerator
	subIDs   SubtaskIDGenerator
	events   EventLogger
	now      func() time.Time
	lockPath string
}

// NewTaskManager creates a new TaskManager with all dependencies injected.
// events may be nil. now defaults to time.Now when nil.
func NewTaskManager(basePath string, store TaskStore, ids TaskIDGenerator, subIDs SubtaskIDGenerator, events EventLogger, now func() time.Time) TaskManager {
	if now == nil {
		now = time.Now
	}
	if subIDs == nil {
		subIDs = NewSubtaskIDGenerator()
	}
	return &taskManager{
		store:    store,
		ids:      ids,
		subIDs:   subIDs,
		events:   events,
		now:      now,
		lockPath: filepath.Join(basePath, "tasks.yaml.lock"),
	}
}

// CreateTask validates opts, assigns an ID and persists the new task.
func (tm *taskManager) CreateTask(opts CreateTaskOpts) (*models.Task, error) {
	if err := validateCreateOpts(opts); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	var created models.Task
	err := tm.mutate(func() error {
		id, err := tm.ids.GenerateTaskID()
		if err != nil {
			return fmt.Errorf("generating task ID: %w", err)
		}
		created = models.Task{
			ID:          id,
			Title:       strings.TrimSpace(opts.Title),
			Description: opts.Description,
			Status:      models.StatusToDo,
			Type:        opts.Type,
			CreatedAt:   tm.now(),
			Subtasks:    []models.Subtask{},
		}
		switch opts.Type {
		case models.TaskTypeDeadline:
			created.StartDate = copyTime(opts.StartDate)
			created.EndDate = copyTime(opts.EndDate)
		case models.TaskTypeRecurring:
			created.RecurringDays = dedupeWeekdays(opts.RecurringDays)
		}
		return tm.store.Add(created)
	})
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	tm.logEvent("task.created", map[string]any{
		"task_id": created.ID,
		"type":    string(created.Type),
		"title":   created.Title,
	})
	return &created, nil
}

// GetTask returns the task with the given ID.
func (tm *taskManager) GetTask(taskID string) (*models.Task, error) {
	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	task, ok := tm.store.Get(taskID)
	if !ok {
		return nil, fmt.Errorf("getting task %s: %w", taskID, ErrTaskNotFound)
	}
	return &task, nil
}

// GetAllTasks returns every stored task ordered by ID.
func (tm *taskManager) GetAllTasks() ([]models.Task, error) {
	if err := tm.store.Load(); err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return tm.store.All(), nil
}

// DeleteTask removes a task and all of its subtasks.
func (tm *taskManager) DeleteTask(taskID string) error {
	err := tm.mutate(func() error {
		if _, ok := tm.store.Get(taskID); !ok {
			return ErrTaskNotFound
		}
		return tm.store.Remove(taskID)
	})
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", taskID, err)
	}
	tm.logEvent("task.deleted", map[string]any{"task_id": taskID})
	return nil
}

// UpdateTaskStatus sets the lifecycle status of a task. Moving a task to
// done is refused while any of its subtasks is still open.
func (tm *taskManager) UpdateTaskStatus(taskID string, status models.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("updating task %s: %w: unknown status %q", taskID, ErrInvalidTask, status)
	}

	var old models.TaskStatus
	err := tm.mutate(func() error {
		task, ok := tm.store.Get(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		if status == models.StatusDone && IsDoneLocked(&task) {
			return ErrDoneLocked
		}
		old = task.Status
		task.Status = status
		return tm.store.Update(task)
	})
	if err != nil {
		return fmt.Errorf("updating task %s: %w", taskID, err)
	}

	if old != status {
		tm.logEvent("task.status_changed", map[string]any{
			"task_id":    taskID,
			"old_status": string(old),
			"new_status": string(status),
		})
	}
	return nil
}

// AddSubtask appends a subtask to a task. Only Deadline subtasks may carry
// dates and those must fall inside the parent's interval. Adding to a done
// Deadline or Recurring task moves it back to in_progress.
func (tm *taskManager) AddSubtask(taskID string, opts SubtaskOpts) (*models.Subtask, error) {
	var (
		added    models.Subtask
		reopened bool
	)
	err := tm.mutate(func() error {
		task, ok := tm.store.Get(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		if err := validateSubtaskOpts(&task, opts); err != nil {
			return err
		}
		added = models.Subtask{
			ID:          tm.subIDs.GenerateSubtaskID(),
			Title:       strings.TrimSpace(opts.Title),
			Description: opts.Description,
			StartDate:   copyTime(opts.StartDate),
			EndDate:     copyTime(opts.EndDate),
			Attachments: opts.Attachments,
		}
		task.Subtasks = append(task.Subtasks, added)
		if task.Status == models.StatusDone && task.Type != models.TaskTypeIdea {
			task.Status = models.StatusInProgress
			reopened = true
		}
		return tm.store.Update(task)
	})
	if err != nil {
		return nil, fmt.Errorf("adding subtask to %s: %w", taskID, err)
	}

	tm.logEvent("subtask.added", map[string]any{
		"task_id":    taskID,
		"subtask_id": added.ID,
	})
	if reopened {
		tm.logReopened(taskID)
	}
	return &added, nil
}

// ToggleSubtask flips the completion flag of a subtask. Reopening a subtask
// of a done task moves the task back to in_progress.
func (tm *taskManager) ToggleSubtask(taskID, subtaskID string) (*models.Subtask, error) {
	var (
		toggled  models.Subtask
		reopened bool
	)
	err := tm.mutate(func() error {
		task, ok := tm.store.Get(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		idx := task.SubtaskIndex(subtaskID)
		if idx < 0 {
			return ErrSubtaskNotFound
		}
		sub := &task.Subtasks[idx]
		sub.Completed = !sub.Completed
		if sub.Completed {
			sub.ManuallyStarted = false
		} else if task.Status == models.StatusDone {
			task.Status = models.StatusInProgress
			reopened = true
		}
		toggled = *sub
		return tm.store.Update(task)
	})
	if err != nil {
		return nil, fmt.Errorf("toggling subtask %s of %s: %w", subtaskID, taskID, err)
	}

	tm.logEvent("subtask.toggled", map[string]any{
		"task_id":    taskID,
		"subtask_id": subtaskID,
		"completed":  toggled.Completed,
	})
	if reopened {
		tm.logReopened(taskID)
	}
	return &toggled, nil
}

func (tm *taskManager) logReopened(taskID string) {
	tm.logEvent("task.status_changed", map[string]any{
		"task_id":    taskID,
		"old_status": string(models.StatusDone),
		"new_status": string(models.StatusInProgress),
	})
}

// StartSubtask marks an open subtask as manually started so it is treated as
// active today regardless of its dates or recurrence.
func (tm *taskManager) StartSubtask(taskID, subtaskID string) (*models.Subtask, error) {
	var started models.Subtask
	err := tm.mutate(func() error {
		task, ok := tm.store.Get(taskID)
		if !ok {
			return ErrTaskNotFound
		}
		if task.Type == models.TaskTypeIdea {
			return fmt.Errorf("%w: idea subtasks cannot be started", ErrInvalidTask)
		}
		idx := task.SubtaskIndex(subtaskID)
		if idx < 0 {
			return ErrSubtaskNotFound
		}
		sub := &task.Subtasks[idx]
		if sub.Completed {
			return fmt.Errorf("%w: subtask is already completed", ErrInvalidTask)
		}
		sub.ManuallyStarted = true
		started = *sub
		return tm.store.Update(task)
	})
	if err != nil {
		return nil, fmt.Errorf("starting subtask %s of %s: %w", subtaskID, taskID, err)
	}

	tm.logEvent("subtask.started", map[string]any{
		"task_id":    taskID,
		"subtask_id": subtaskID,
	})
	return &started, nil
}

// mutate runs fn between a fresh Load and a Save under the store lock.
func (tm *taskManager) mutate(fn func() error) error {
	return withFileLock(tm.lockPath, func() error {
		if err := tm.store.Load(); err != nil {
			return fmt.Errorf("loading tasks: %w", err)
		}
		if err := fn(); err != nil {
			return err
		}
		if err := tm.store.Save(); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}
		return nil
	})
}

// logEvent emits an event if an EventLogger is configured.
func (tm *taskManager) logEvent(eventType string, data map[string]any) {
	if tm.events != nil {
		_ = tm.events.LogEvent(eventType, data)
	}
}

func validateCreateOpts(opts CreateTaskOpts) error {
	if strings.TrimSpace(opts.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !opts.Type.Valid() {
		return fmt.Errorf("%w: unknown task type %q", ErrInvalidTask, opts.Type)
	}

	switch opts.Type {
	case models.TaskTypeDeadline:
		if opts.StartDate == nil || opts.EndDate == nil {
			return fmt.Errorf("%w: deadline tasks need a start and an end date", ErrInvalidTask)
		}
		if !opts.EndDate.After(*opts.StartDate) {
			return fmt.Errorf("%w: end date must be after start date", ErrInvalidTask)
		}
		if len(opts.RecurringDays) > 0 {
			return fmt.Errorf("%w: deadline tasks do not recur", ErrInvalidTask)
		}
	case models.TaskTypeRecurring:
		if len(opts.RecurringDays) == 0 {
			return fmt.Errorf("%w: recurring tasks need at least one weekday", ErrInvalidTask)
		}
		for _, d := range opts.RecurringDays {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("%w: weekday %d out of range", ErrInvalidTask, d)
			}
		}
		if opts.StartDate != nil || opts.EndDate != nil {
			return fmt.Errorf("%w: recurring tasks carry no dates", ErrInvalidTask)
		}
	case models.TaskTypeIdea:
		if opts.StartDate != nil || opts.EndDate != nil || len(opts.RecurringDays) > 0 {
			return fmt.Errorf("%w: idea tasks carry no dates or weekdays", ErrInvalidTask)
		}
	}
	return nil
}

func validateSubtaskOpts(task *models.Task, opts SubtaskOpts) error {
	if strings.TrimSpace(opts.Title) == "" {
		return fmt.Errorf("%w: subtask title is required", ErrInvalidTask)
	}
	if opts.StartDate == nil && opts.EndDate == nil {
		return nil
	}
	if task.Type != models.TaskTypeDeadline {
		return fmt.Errorf("%w: only deadline subtasks may have dates", ErrInvalidTask)
	}
	if opts.StartDate == nil || opts.EndDate == nil {
		return fmt.Errorf("%w: subtask dates must be given together", ErrInvalidTask)
	}
	if opts.EndDate.Before(*opts.StartDate) {
		return fmt.Errorf("%w: subtask end date is before its start date", ErrInvalidTask)
	}

	parent, err := TaskInterval(task)
	if err != nil {
		return fmt.Errorf("%w: parent task has no valid interval", ErrInvalidTask)
	}
	if calendar.DayFloor(*opts.StartDate).Before(calendar.DayFloor(parent.Start)) ||
		calendar.DayFloor(*opts.EndDate).After(calendar.DayFloor(parent.End)) {
		return fmt.Errorf("%w: subtask dates fall outside %s..%s", ErrInvalidTask,
			parent.Start.Format("2006-01-02"), parent.End.Format("2006-01-02"))
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func dedupeWeekdays(days []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]bool, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
