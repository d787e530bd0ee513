// Package internal provides the App struct that wires all components of
// pulse together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/pulse/internal/cli"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/internal/observability"
	"github.com/valter-silva-au/pulse/internal/storage"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// EventLogFile is the JSONL event log kept next to tasks.yaml.
const EventLogFile = ".pulse_events.jsonl"

// App holds all service dependencies for pulse.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	TaskStore storage.TaskStoreManager

	// Core services
	IDGen         core.TaskIDGenerator
	TaskMgr       core.TaskManager
	Engine        *core.Engine
	WorkspaceInit core.WorkspaceInitializer

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of pulse. basePath is the
// directory holding .pulseconfig and tasks.yaml.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		// Use defaults if the config file is missing or invalid.
		globalCfg = core.DefaultGlobalConfig()
	}
	app.Config = globalCfg

	// --- Storage layer ---
	app.TaskStore = storage.NewTaskStore(basePath)

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFile))
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core services ---
	prefix := globalCfg.TaskIDPrefix
	if prefix == "" {
		prefix = "TASK"
	}
	app.IDGen = core.NewTaskIDGenerator(basePath, prefix, globalCfg.TaskIDPadWidth)
	app.TaskMgr = core.NewTaskManager(basePath, app.TaskStore, app.IDGen, core.NewSubtaskIDGenerator(), evtAdapter, time.Now)
	app.Engine = core.NewEngine(core.WeekStart(globalCfg))
	app.WorkspaceInit = core.NewWorkspaceInitializer()

	thresholds := observability.DefaultAlertThresholds()
	if globalCfg.Notifications.Alerts.DueSoonHours > 0 {
		thresholds.DueSoonHours = globalCfg.Notifications.Alerts.DueSoonHours
	}
	app.AlertEngine = observability.NewAlertEngine(app.TaskMgr, thresholds)
	if globalCfg.Notifications.Enabled && globalCfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(globalCfg.Notifications.Slack.WebhookURL)
	}

	// --- Wire CLI package-level variables ---
	cli.TaskMgr = app.TaskMgr
	cli.Engine = app.Engine
	cli.Config = app.Config
	cli.WorkspaceInit = app.WorkspaceInit

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the pulse workspace directory. It checks the
// PULSE_HOME env var, then walks up from the current directory looking for
// .pulseconfig, and finally falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("PULSE_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".pulseconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:  time.Now().UTC(),
		Level: observability.LevelInfo,
		Type:  eventType,
		Data:  data,
	})
}
