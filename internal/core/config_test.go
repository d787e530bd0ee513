package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/pulse/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadGlobalConfig tests ---

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cm := NewConfigurationManager(dir)

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TaskIDPrefix != "TASK" {
		t.Errorf("TaskIDPrefix = %q, want %q", cfg.TaskIDPrefix, "TASK")
	}
	if cfg.TaskIDPadWidth != 5 {
		t.Errorf("TaskIDPadWidth = %d, want 5", cfg.TaskIDPadWidth)
	}
	if cfg.WeekStartsOn != "monday" {
		t.Errorf("WeekStartsOn = %q, want monday", cfg.WeekStartsOn)
	}
	if cfg.View.RefreshSeconds != 60 {
		t.Errorf("RefreshSeconds = %d, want 60", cfg.View.RefreshSeconds)
	}
	if cfg.Notifications.Alerts.DueSoonHours != 24 {
		t.Errorf("DueSoonHours = %d, want 24", cfg.Notifications.Alerts.DueSoonHours)
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadGlobalConfig_ReadsPulseconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pulseconfig.yaml", `
task_id:
  prefix: "HOME"
  pad_width: 0
calendar:
  week_starts_on: sunday
view:
  window: week
  type_filter: recurring
  sort: duration_desc
  refresh_seconds: 30
labels:
  completed: "Fertig"
notifications:
  enabled: true
  slack:
    webhook_url: "https://hooks.example.com/T000"
  alerts:
    due_soon_hours: 6
`)

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TaskIDPrefix != "HOME" {
		t.Errorf("TaskIDPrefix = %q, want HOME", cfg.TaskIDPrefix)
	}
	if cfg.TaskIDPadWidth != 0 {
		t.Errorf("TaskIDPadWidth = %d, want explicit 0", cfg.TaskIDPadWidth)
	}
	if cfg.View.Window != "week" || cfg.View.TypeFilter != "recurring" || cfg.View.Sort != "duration_desc" {
		t.Errorf("unexpected view config: %+v", cfg.View)
	}
	if cfg.View.RefreshSeconds != 30 {
		t.Errorf("RefreshSeconds = %d, want 30", cfg.View.RefreshSeconds)
	}
	if cfg.Labels.Completed != "Fertig" {
		t.Errorf("Labels.Completed = %q", cfg.Labels.Completed)
	}
	if cfg.Labels.Overdue != "Overdue" {
		t.Errorf("Labels.Overdue should keep its default, got %q", cfg.Labels.Overdue)
	}
	if !cfg.Notifications.Enabled || cfg.Notifications.Slack.WebhookURL == "" {
		t.Errorf("unexpected notifications: %+v", cfg.Notifications)
	}
	if cfg.Notifications.Alerts.DueSoonHours != 6 {
		t.Errorf("DueSoonHours = %d, want 6", cfg.Notifications.Alerts.DueSoonHours)
	}
	if WeekStart(cfg) != time.Sunday {
		t.Errorf("WeekStart = %v, want Sunday", WeekStart(cfg))
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadGlobalConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pulseconfig.yaml", "view: [unclosed\n")

	cm := NewConfigurationManager(dir)
	if _, err := cm.LoadGlobalConfig(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg := DefaultGlobalConfig()
	cfg.TaskIDPrefix = "lower"
	cfg.WeekStartsOn = "funday"
	cfg.View.Window = "year"
	cfg.View.Sort = "random"
	cfg.View.RefreshSeconds = 0
	cfg.Notifications.Enabled = true

	err := cm.ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"task_id.prefix",
		"calendar.week_starts_on",
		"view.window",
		"view.sort",
		"view.refresh_seconds",
		"webhook_url",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestWeekStart_FallsBackToMonday(t *testing.T) {
	if got := WeekStart(nil); got != time.Monday {
		t.Errorf("WeekStart(nil) = %v", got)
	}
	cfg := &models.GlobalConfig{WeekStartsOn: "whenever"}
	if got := WeekStart(cfg); got != time.Monday {
		t.Errorf("WeekStart(invalid) = %v", got)
	}
}

func TestLabelsFromConfig(t *testing.T) {
	labels := LabelsFromConfig(&models.GlobalConfig{Labels: models.LabelConfig{Overdue: "late"}})
	if labels.Overdue != "late" {
		t.Errorf("Overdue = %q", labels.Overdue)
	}
	if labels.Completed != "Completed" || labels.MinuteSuffix != "m" {
		t.Errorf("defaults not kept: %+v", labels)
	}
}
