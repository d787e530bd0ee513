package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/internal/observability"
	"github.com/valter-silva-au/pulse/internal/storage"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// cliNow is Thursday 2024-01-04 12:00 local time.
var cliNow = time.Date(2024, 1, 4, 12, 0, 0, 0, time.Local)

type eventLogBridge struct {
	log observability.EventLog
}

func (b *eventLogBridge) LogEvent(eventType string, data map[string]any) error {
	return b.log.Write(observability.Event{Time: cliNow.UTC(), Type: eventType, Data: data})
}

type cliFixture struct {
	base   string
	mgr    core.TaskManager
	events observability.EventLog
}

// setupCLI wires the package-level services to a fresh workspace with a
// fixed clock and restores the previous wiring when the test ends.
func setupCLI(t *testing.T) *cliFixture {
	t.Helper()
	base := t.TempDir()

	events, err := observability.NewJSONLEventLog(filepath.Join(base, ".pulse_events.jsonl"))
	if err != nil {
		t.Fatalf("opening event log: %v", err)
	}
	t.Cleanup(func() { _ = events.Close() })

	clock := func() time.Time { return cliNow }
	mgr := core.NewTaskManager(base,
		storage.NewTaskStore(base),
		core.NewTaskIDGenerator(base, "TASK", 5),
		core.NewSubtaskIDGenerator(),
		&eventLogBridge{log: events},
		clock,
	)

	origTaskMgr, origEngine, origConfig, origClock := TaskMgr, Engine, Config, Clock
	origEventLog, origAlerts, origMetrics, origNotifier := EventLog, AlertEngine, MetricsCalc, Notifier
	t.Cleanup(func() {
		TaskMgr, Engine, Config, Clock = origTaskMgr, origEngine, origConfig, origClock
		EventLog, AlertEngine, MetricsCalc, Notifier = origEventLog, origAlerts, origMetrics, origNotifier
	})

	TaskMgr = mgr
	Config = core.DefaultGlobalConfig()
	Engine = core.NewEngine(time.Monday)
	Clock = clock
	EventLog = events
	AlertEngine = observability.NewAlertEngine(mgr, observability.DefaultAlertThresholds())
	MetricsCalc = observability.NewMetricsCalculator(events)
	Notifier = nil

	return &cliFixture{base: base, mgr: mgr, events: events}
}

// run executes a subcommand's RunE with output captured.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	t.Cleanup(func() { cmd.SetOut(nil) })
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func day(d, h int) *time.Time {
	v := time.Date(2024, 1, d, h, 0, 0, 0, time.Local)
	return &v
}

// seedDeadline creates a deadline task spanning Jan 1 to Jan 10 with one
// subtask per given window.
func (f *cliFixture) seedDeadline(t *testing.T, title string, subs ...core.SubtaskOpts) *models.Task {
	t.Helper()
	task, err := f.mgr.CreateTask(core.CreateTaskOpts{
		Title:     title,
		Type:      models.TaskTypeDeadline,
		StartDate: day(1, 0),
		EndDate:   day(10, 23),
	})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}
	for _, s := range subs {
		if _, err := f.mgr.AddSubtask(task.ID, s); err != nil {
			t.Fatalf("adding subtask: %v", err)
		}
	}
	got, err := f.mgr.GetTask(task.ID)
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	return got
}

func (f *cliFixture) seedRecurring(t *testing.T, title string, days []time.Weekday, subTitles ...string) *models.Task {
	t.Helper()
	task, err := f.mgr.CreateTask(core.CreateTaskOpts{
		Title:         title,
		Type:          models.TaskTypeRecurring,
		RecurringDays: days,
	})
	if err != nil {
		t.Fatalf("creating task: %v", err)
	}
	for _, st := range subTitles {
		if _, err := f.mgr.AddSubtask(task.ID, core.SubtaskOpts{Title: st}); err != nil {
			t.Fatalf("adding subtask: %v", err)
		}
	}
	got, err := f.mgr.GetTask(task.ID)
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	return got
}
