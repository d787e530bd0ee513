package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/pkg/models"
)

func resetTaskAddFlags(t *testing.T) {
	t.Cleanup(func() {
		taskAddType = string(models.TaskTypeDeadline)
		taskAddStart, taskAddEnd, taskAddDays, taskAddDescription = "", "", "", ""
		taskListType, taskListSort = "", ""
	})
}

// --- Registration Tests ---

func TestTaskCmd_Subcommands(t *testing.T) {
	expected := []string{"add", "list", "show", "status", "delete"}
	subs := make(map[string]bool)
	for _, cmd := range taskCmd.Commands() {
		subs[cmd.Name()] = true
	}
	for _, name := range expected {
		if !subs[name] {
			t.Errorf("expected subcommand %q on 'task', but it was not registered", name)
		}
	}
}

func TestTaskCommands_NilTaskManager(t *testing.T) {
	origTaskMgr := TaskMgr
	defer func() { TaskMgr = origTaskMgr }()
	TaskMgr = nil

	cases := map[string]struct {
		run  func() error
		name string
	}{
		"add":    {func() error { return taskAddCmd.RunE(taskAddCmd, []string{"x"}) }, "add"},
		"list":   {func() error { return taskListCmd.RunE(taskListCmd, nil) }, "list"},
		"show":   {func() error { return taskShowCmd.RunE(taskShowCmd, []string{"TASK-00001"}) }, "show"},
		"status": {func() error { return taskStatusCmd.RunE(taskStatusCmd, []string{"TASK-00001", "done"}) }, "status"},
		"delete": {func() error { return taskDeleteCmd.RunE(taskDeleteCmd, []string{"TASK-00001"}) }, "delete"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := c.run()
			if err == nil {
				t.Fatal("expected error when TaskMgr is nil")
			}
			if !strings.Contains(err.Error(), "task manager not initialized") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// --- task add ---

func TestTaskAdd_Deadline(t *testing.T) {
	f := setupCLI(t)
	resetTaskAddFlags(t)
	taskAddType = "deadline"
	taskAddStart = "2024-01-01"
	taskAddEnd = "2024-01-10"

	out, err := run(t, taskAddCmd, "Quarterly", "report")
	if err != nil {
		t.Fatalf("task add failed: %v", err)
	}
	if !strings.Contains(out, "Created task TASK-00001") {
		t.Errorf("output should name the new task, got:\n%s", out)
	}
	if !strings.Contains(out, "2024-01-10 23:59") {
		t.Errorf("bare end date should mean end of day, got:\n%s", out)
	}

	task, err := f.mgr.GetTask("TASK-00001")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Title != "Quarterly report" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Type != models.TaskTypeDeadline {
		t.Errorf("type = %q", task.Type)
	}
}

func TestTaskAdd_Recurring(t *testing.T) {
	f := setupCLI(t)
	resetTaskAddFlags(t)
	taskAddType = "recurring"
	taskAddDays = "mon, thu,mon"

	out, err := run(t, taskAddCmd, "Standup")
	if err != nil {
		t.Fatalf("task add failed: %v", err)
	}
	if !strings.Contains(out, "Every: Mon,Thu") {
		t.Errorf("expected deduplicated weekdays, got:\n%s", out)
	}

	task, err := f.mgr.GetTask("TASK-00001")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if len(task.RecurringDays) != 2 {
		t.Errorf("recurring days = %v", task.RecurringDays)
	}
}

func TestTaskAdd_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
		want  string
	}{
		{"bad start date", func() { taskAddStart = "01/02/2024"; taskAddEnd = "2024-01-03" }, "parsing --start"},
		{"bad weekday", func() { taskAddType = "recurring"; taskAddDays = "mon,funday" }, "parsing --days"},
		{"deadline without dates", func() {}, ""},
		{"idea with days", func() { taskAddType = "idea"; taskAddDays = "mon" }, ""},
		{"unknown type", func() { taskAddType = "chore" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLI(t)
			resetTaskAddFlags(t)
			tt.setup()

			_, err := run(t, taskAddCmd, "Thing")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
			if tt.want == "" && !errors.Is(err, core.ErrInvalidTask) {
				t.Errorf("expected ErrInvalidTask, got %v", err)
			}
		})
	}
}

// --- task list ---

func TestTaskList_Empty(t *testing.T) {
	setupCLI(t)
	resetTaskAddFlags(t)

	out, err := run(t, taskListCmd)
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTaskList_ShowsDerivedState(t *testing.T) {
	f := setupCLI(t)
	resetTaskAddFlags(t)
	f.seedDeadline(t, "Launch",
		core.SubtaskOpts{Title: "Design", StartDate: day(1, 9), EndDate: day(2, 17)},
		core.SubtaskOpts{Title: "Build", StartDate: day(3, 9), EndDate: day(5, 9)},
	)
	f.seedRecurring(t, "Standup", []time.Weekday{time.Thursday}, "Notes")
	if _, err := f.mgr.CreateTask(core.CreateTaskOpts{Title: "Someday", Type: models.TaskTypeIdea}); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, taskListCmd)
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	for _, want := range []string{"TASK-00001", "TASK-00002", "TASK-00003", "in_progress", "0/2", "6d 11h", "every Thu (today)", "draft"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestTaskList_TypeFilter(t *testing.T) {
	f := setupCLI(t)
	resetTaskAddFlags(t)
	f.seedDeadline(t, "Launch")
	f.seedRecurring(t, "Standup", []time.Weekday{time.Monday})
	taskListType = "recurring"

	out, err := run(t, taskListCmd)
	if err != nil {
		t.Fatalf("task list failed: %v", err)
	}
	if strings.Contains(out, "Launch") {
		t.Errorf("deadline task should be filtered out:\n%s", out)
	}
	if !strings.Contains(out, "Standup") {
		t.Errorf("recurring task should be listed:\n%s", out)
	}
}

func TestTaskList_InvalidSort(t *testing.T) {
	setupCLI(t)
	resetTaskAddFlags(t)
	taskListSort = "priority"

	if _, err := run(t, taskListCmd); err == nil {
		t.Fatal("expected error for unknown sort mode")
	}
}

// --- task show / status / delete ---

func TestTaskShow_ListsSubtasks(t *testing.T) {
	f := setupCLI(t)
	task := f.seedDeadline(t, "Launch",
		core.SubtaskOpts{Title: "Design", StartDate: day(1, 9), EndDate: day(2, 17)},
		core.SubtaskOpts{Title: "Spec review", Attachments: []models.Attachment{{Name: "doc", URI: "https://example.com/doc"}}},
	)

	out, err := run(t, taskShowCmd, task.ID)
	if err != nil {
		t.Fatalf("task show failed: %v", err)
	}
	for _, want := range []string{"Launch", "Subtasks (0% complete)", "Design", "overdue", "Overdue", "attachment: doc (https://example.com/doc)", "Open subtasks keep this task from being marked done."} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestTaskShow_NotFound(t *testing.T) {
	setupCLI(t)
	_, err := run(t, taskShowCmd, "TASK-99999")
	if !errors.Is(err, core.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskStatus_DoneLockedThenAllowed(t *testing.T) {
	f := setupCLI(t)
	task := f.seedRecurring(t, "Standup", []time.Weekday{time.Thursday}, "Notes")

	_, err := run(t, taskStatusCmd, task.ID, "done")
	if !errors.Is(err, core.ErrDoneLocked) {
		t.Fatalf("expected ErrDoneLocked, got %v", err)
	}

	if _, err := f.mgr.ToggleSubtask(task.ID, task.Subtasks[0].ID); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, taskStatusCmd, task.ID, "DONE")
	if err != nil {
		t.Fatalf("task status failed: %v", err)
	}
	if !strings.Contains(out, "is now done") {
		t.Errorf("unexpected output:\n%s", out)
	}
	got, _ := f.mgr.GetTask(task.ID)
	if got.Status != models.StatusDone {
		t.Errorf("status = %q, want done", got.Status)
	}
}

func TestTaskDelete(t *testing.T) {
	f := setupCLI(t)
	task := f.seedDeadline(t, "Launch")

	out, err := run(t, taskDeleteCmd, task.ID)
	if err != nil {
		t.Fatalf("task delete failed: %v", err)
	}
	if !strings.Contains(out, "Deleted task "+task.ID) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := f.mgr.GetTask(task.ID); !errors.Is(err, core.ErrTaskNotFound) {
		t.Errorf("expected task to be gone, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 8, "this is…"},
		{"héllo wörld", 5, "héll…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
