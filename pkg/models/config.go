package models

// LabelConfig holds the wording used for remaining-time labels.
type LabelConfig struct {
	Completed string `yaml:"completed" mapstructure:"completed"`
	Overdue   string `yaml:"overdue" mapstructure:"overdue"`
}

// ViewConfig holds the default selections for summaries and the dashboard.
type ViewConfig struct {
	Window         string `yaml:"window" mapstructure:"window"`
	TypeFilter     string `yaml:"type_filter" mapstructure:"type_filter"`
	Sort           string `yaml:"sort" mapstructure:"sort"`
	RefreshSeconds int    `yaml:"refresh_seconds" mapstructure:"refresh_seconds"`
}

// SlackConfig holds the Slack incoming-webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// AlertConfig holds thresholds for alert evaluation.
type AlertConfig struct {
	DueSoonHours int `yaml:"due_soon_hours" mapstructure:"due_soon_hours"`
}

// NotificationConfig groups alert delivery settings.
type NotificationConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
	Alerts  AlertConfig `yaml:"alerts" mapstructure:"alerts"`
}

// GlobalConfig holds system-wide settings read from .pulseconfig via Viper.
type GlobalConfig struct {
	TaskIDPrefix   string             `yaml:"task_id_prefix" mapstructure:"task_id_prefix"`
	TaskIDPadWidth int                `yaml:"task_id_pad_width" mapstructure:"task_id_pad_width"`
	WeekStartsOn   string             `yaml:"week_starts_on" mapstructure:"week_starts_on"`
	View           ViewConfig         `yaml:"view" mapstructure:"view"`
	Labels         LabelConfig        `yaml:"labels" mapstructure:"labels"`
	Notifications  NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}
