package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TaskIDGenerator defines the interface for generating unique, sequential task IDs.
type TaskIDGenerator interface {
	GenerateTaskID() (string, error)
}

// SubtaskIDGenerator produces identifiers for subtasks. Subtask IDs only need
// to be unique, not ordered, so they are random.
type SubtaskIDGenerator interface {
	GenerateSubtaskID() string
}

// fileTaskIDGenerator implements TaskIDGenerator by persisting a counter
// in a .task_counter file on disk.
type fileTaskIDGenerator struct {
	basePath string
	prefix   string
	padWidth int
}

// NewTaskIDGenerator creates a new TaskIDGenerator that stores its counter
// in a .task_counter file within basePath. padWidth controls the zero-padding
// width of the numeric portion. Use 0 for no padding (e.g., TASK-1).
func NewTaskIDGenerator(basePath string, prefix string, padWidth int) TaskIDGenerator {
	return &fileTaskIDGenerator{
		basePath: basePath,
		prefix:   prefix,
		padWidth: padWidth,
	}
}

// GenerateTaskID reads the current counter from the .task_counter file,
// increments it, writes it back, and returns the formatted task ID.
// The read-increment-write cycle runs under an exclusive lock so two pulse
// processes never hand out the same ID.
func (g *fileTaskIDGenerator) GenerateTaskID() (string, error) {
	if err := os.MkdirAll(g.basePath, 0o750); err != nil {
		return "", fmt.Errorf("creating base path for task counter: %w", err)
	}

	counterPath := filepath.Join(g.basePath, ".task_counter")

	var counter int
	err := withFileLock(counterPath+".lock", func() error {
		var err error
		counter, err = readCounter(counterPath)
		if err != nil {
			return err
		}
		counter++
		if err := os.WriteFile(counterPath, []byte(strconv.Itoa(counter)), 0o600); err != nil {
			return fmt.Errorf("writing task counter file: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return FormatTaskID(g.prefix, g.padWidth, counter), nil
}

// readCounter returns the last issued counter value, 0 when the file is
// missing or empty.
func readCounter(path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading task counter file: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parsing task counter %q: %w", trimmed, err)
	}
	return n, nil
}

// FormatTaskID renders a counter value as {prefix}-{counter}, zero-padded to
// padWidth digits when padWidth is positive.
func FormatTaskID(prefix string, padWidth, counter int) string {
	if padWidth > 0 {
		return fmt.Sprintf("%s-%0*d", prefix, padWidth, counter)
	}
	return fmt.Sprintf("%s-%d", prefix, counter)
}

type uuidSubtaskIDGenerator struct{}

// NewSubtaskIDGenerator returns a SubtaskIDGenerator backed by random UUIDs.
func NewSubtaskIDGenerator() SubtaskIDGenerator {
	return uuidSubtaskIDGenerator{}
}

func (uuidSubtaskIDGenerator) GenerateSubtaskID() string {
	return uuid.NewString()
}
