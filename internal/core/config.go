// Package core contains the business logic for pulse: the temporal
// task-state and aggregation engine (relevance, derived status, progress,
// remaining-time labels, window aggregates and ordering) plus the task
// manager and configuration services that host it.
package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/pulse/internal/calendar"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// validPrefixPattern matches uppercase alphanumeric prefixes between 1 and 10 characters.
var validPrefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// ConfigurationManager loads and validates the global .pulseconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(config *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .pulseconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		TaskIDPrefix:   "TASK",
		TaskIDPadWidth: 5,
		WeekStartsOn:   "monday",
		View: models.ViewConfig{
			Window:         string(WindowToday),
			TypeFilter:     string(FilterAll),
			Sort:           string(SortCreated),
			RefreshSeconds: 60,
		},
		Labels: models.LabelConfig{
			Completed: "Completed",
			Overdue:   "Overdue",
		},
		Notifications: models.NotificationConfig{
			Alerts: models.AlertConfig{DueSoonHours: 24},
		},
	}
}

// LoadGlobalConfig reads the .pulseconfig file from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".pulseconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("task_id.prefix", cfg.TaskIDPrefix)
	v.SetDefault("task_id.pad_width", cfg.TaskIDPadWidth)
	v.SetDefault("calendar.week_starts_on", cfg.WeekStartsOn)
	v.SetDefault("view.window", cfg.View.Window)
	v.SetDefault("view.type_filter", cfg.View.TypeFilter)
	v.SetDefault("view.sort", cfg.View.Sort)
	v.SetDefault("view.refresh_seconds", cfg.View.RefreshSeconds)
	v.SetDefault("labels.completed", cfg.Labels.Completed)
	v.SetDefault("labels.overdue", cfg.Labels.Overdue)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.slack.webhook_url", "")
	v.SetDefault("notifications.alerts.due_soon_hours", cfg.Notifications.Alerts.DueSoonHours)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .pulseconfig: %w", err)
	}

	cfg.TaskIDPrefix = v.GetString("task_id.prefix")
	// Use IsSet to distinguish "not set" (use default 5) from "explicitly set to 0".
	if v.IsSet("task_id.pad_width") {
		cfg.TaskIDPadWidth = v.GetInt("task_id.pad_width")
	}
	cfg.WeekStartsOn = v.GetString("calendar.week_starts_on")
	cfg.View.Window = v.GetString("view.window")
	cfg.View.TypeFilter = v.GetString("view.type_filter")
	cfg.View.Sort = v.GetString("view.sort")
	cfg.View.RefreshSeconds = v.GetInt("view.refresh_seconds")
	cfg.Labels.Completed = v.GetString("labels.completed")
	cfg.Labels.Overdue = v.GetString("labels.overdue")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")
	cfg.Notifications.Alerts.DueSoonHours = v.GetInt("notifications.alerts.due_soon_hours")

	return cfg, nil
}

// ValidateConfig checks the provided configuration for invalid values and
// returns a single error listing every problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.TaskIDPrefix == "" {
		errs = append(errs, "task_id.prefix must not be empty")
	} else if !validPrefixPattern.MatchString(cfg.TaskIDPrefix) {
		errs = append(errs, fmt.Sprintf(
			"task_id.prefix %q is invalid, must match [A-Z0-9]{1,10}",
			cfg.TaskIDPrefix,
		))
	}

	if cfg.TaskIDPadWidth < 0 || cfg.TaskIDPadWidth > 10 {
		errs = append(errs, fmt.Sprintf(
			"task_id.pad_width %d is invalid, must be between 0 and 10",
			cfg.TaskIDPadWidth,
		))
	}

	if _, err := calendar.ParseWeekday(cfg.WeekStartsOn); err != nil {
		errs = append(errs, fmt.Sprintf("calendar.week_starts_on: %v", err))
	}
	if _, err := ParseWindow(cfg.View.Window); err != nil {
		errs = append(errs, "view.window: "+err.Error())
	}
	if _, err := ParseTypeFilter(cfg.View.TypeFilter); err != nil {
		errs = append(errs, "view.type_filter: "+err.Error())
	}
	if _, err := ParseSortMode(cfg.View.Sort); err != nil {
		errs = append(errs, "view.sort: "+err.Error())
	}
	if cfg.View.RefreshSeconds < 1 {
		errs = append(errs, fmt.Sprintf("view.refresh_seconds must be positive, got %d", cfg.View.RefreshSeconds))
	}
	if cfg.Notifications.Alerts.DueSoonHours < 0 {
		errs = append(errs, fmt.Sprintf(
			"notifications.alerts.due_soon_hours must be non-negative, got %d",
			cfg.Notifications.Alerts.DueSoonHours,
		))
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, "notifications.slack.webhook_url is required when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("global config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// WeekStart returns the configured first day of the week, Monday when the
// setting is missing or invalid.
func WeekStart(cfg *models.GlobalConfig) time.Weekday {
	if cfg == nil {
		return time.Monday
	}
	d, err := calendar.ParseWeekday(cfg.WeekStartsOn)
	if err != nil {
		return time.Monday
	}
	return d
}

// LabelsFromConfig builds the remaining-time wording from configuration,
// keeping the default for any empty entry.
func LabelsFromConfig(cfg *models.GlobalConfig) LabelSet {
	labels := DefaultLabels()
	if cfg == nil {
		return labels
	}
	if cfg.Labels.Completed != "" {
		labels.Completed = cfg.Labels.Completed
	}
	if cfg.Labels.Overdue != "" {
		labels.Overdue = cfg.Labels.Overdue
	}
	return labels
}
