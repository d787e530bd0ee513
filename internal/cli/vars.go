package cli

import (
	"time"

	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/internal/observability"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	TaskMgr core.TaskManager
	Engine  *core.Engine
	Config  *models.GlobalConfig

	// Clock supplies the reference instant for every derived view.
	Clock = time.Now
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)

func engine() *core.Engine {
	if Engine != nil {
		return Engine
	}
	return core.NewEngine(core.WeekStart(Config))
}

func labels() core.LabelSet {
	return core.LabelsFromConfig(Config)
}

func viewConfig() models.ViewConfig {
	if Config != nil {
		return Config.View
	}
	return core.DefaultGlobalConfig().View
}

// logEvent records a CLI-originated event when the event log is available.
func logEvent(eventType string, data map[string]any) {
	if EventLog == nil {
		return
	}
	_ = EventLog.Write(observability.Event{
		Time:  time.Now().UTC(),
		Level: observability.LevelInfo,
		Type:  eventType,
		Data:  data,
	})
}
