package core

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/valter-silva-au/pulse/internal/calendar"
)

//go:embed templates
var templateFS embed.FS

// InitConfig holds the parameters for initializing a pulse workspace.
type InitConfig struct {
	BasePath     string
	Name         string
	Prefix       string
	WeekStartsOn string
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// WorkspaceInitializer lays out a pulse home: configuration, an empty task
// file and the task counter.
type WorkspaceInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type workspaceInitializer struct{}

// NewWorkspaceInitializer creates a new WorkspaceInitializer.
func NewWorkspaceInitializer() WorkspaceInitializer {
	return &workspaceInitializer{}
}

// Init creates the workspace. It is safe to run on an existing workspace:
// files that already exist are skipped and not overwritten.
func (wi *workspaceInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	if config.Prefix == "" {
		config.Prefix = "TASK"
	}
	if config.Name == "" {
		config.Name = filepath.Base(config.BasePath)
	}
	if config.WeekStartsOn == "" {
		config.WeekStartsOn = "monday"
	}
	if !validPrefixPattern.MatchString(config.Prefix) {
		return nil, fmt.Errorf("initializing workspace: invalid task ID prefix %q", config.Prefix)
	}
	day, err := calendar.ParseWeekday(config.WeekStartsOn)
	if err != nil {
		return nil, fmt.Errorf("initializing workspace: %w", err)
	}
	config.WeekStartsOn = strings.ToLower(day.String())

	created, err := ensureDir(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing workspace: creating directory %s: %w", config.BasePath, err)
	}
	if created {
		result.Created = append(result.Created, config.BasePath)
	} else {
		result.Skipped = append(result.Skipped, config.BasePath)
	}

	configPath := filepath.Join(config.BasePath, ".pulseconfig")
	if err := wi.writeFileIfNotExists(configPath, func() ([]byte, error) {
		return wi.renderTemplate("pulseconfig.yaml", config)
	}, result); err != nil {
		return nil, err
	}

	counterPath := filepath.Join(config.BasePath, ".task_counter")
	if err := wi.writeFileIfNotExists(counterPath, func() ([]byte, error) {
		return []byte("0"), nil
	}, result); err != nil {
		return nil, err
	}

	tasksPath := filepath.Join(config.BasePath, "tasks.yaml")
	if err := wi.writeFileIfNotExists(tasksPath, func() ([]byte, error) {
		return []byte("version: \"1.0\"\ntasks: {}\n"), nil
	}, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func (wi *workspaceInitializer) writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}

// renderTemplate reads an embedded template by name and renders it with
// text/template using the given data.
func (wi *workspaceInitializer) renderTemplate(templateName string, data interface{}) ([]byte, error) {
	tmplContent, err := templateFS.ReadFile("templates/" + templateName)
	if err != nil {
		return nil, fmt.Errorf("loading template %s: %w", templateName, err)
	}
	tmpl, err := template.New(templateName).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", templateName, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", templateName, err)
	}
	return buf.Bytes(), nil
}
