package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/valter-silva-au/pulse/pkg/models"
	"gopkg.in/yaml.v3"
)

// TaskFileName is the name of the task registry inside the base path.
const TaskFileName = "tasks.yaml"

// TaskFile represents the top-level structure of tasks.yaml.
type TaskFile struct {
	Version string                 `yaml:"version"`
	Tasks   map[string]models.Task `yaml:"tasks"`
}

// TaskStoreManager defines the interface for the persistent task registry.
// Mutations only touch memory; Save writes the whole registry back.
type TaskStoreManager interface {
	Add(task models.Task) error
	Update(task models.Task) error
	Remove(taskID string) error
	Get(taskID string) (models.Task, bool)
	All() []models.Task
	Load() error
	Save() error
}

type fileTaskStore struct {
	basePath string
	data     TaskFile
}

// NewTaskStore creates a new TaskStoreManager backed by a tasks.yaml file in
// the given base directory.
func NewTaskStore(basePath string) TaskStoreManager {
	return &fileTaskStore{
		basePath: basePath,
		data:     emptyTaskFile(),
	}
}

func emptyTaskFile() TaskFile {
	return TaskFile{
		Version: "1.0",
		Tasks:   make(map[string]models.Task),
	}
}

func (s *fileTaskStore) filePath() string {
	return filepath.Join(s.basePath, TaskFileName)
}

func (s *fileTaskStore) Add(task models.Task) error {
	task.ID = strings.TrimSpace(task.ID)
	if task.ID == "" {
		return fmt.Errorf("adding task: ID must not be empty")
	}
	if _, exists := s.data.Tasks[task.ID]; exists {
		return fmt.Errorf("adding task: task %s already exists", task.ID)
	}
	s.data.Tasks[task.ID] = task
	return nil
}

func (s *fileTaskStore) Update(task models.Task) error {
	if _, exists := s.data.Tasks[task.ID]; !exists {
		return fmt.Errorf("updating task: task %s not found", task.ID)
	}
	s.data.Tasks[task.ID] = task
	return nil
}

func (s *fileTaskStore) Remove(taskID string) error {
	if _, exists := s.data.Tasks[taskID]; !exists {
		return fmt.Errorf("removing task: task %s not found", taskID)
	}
	delete(s.data.Tasks, taskID)
	return nil
}

func (s *fileTaskStore) Get(taskID string) (models.Task, bool) {
	task, ok := s.data.Tasks[strings.TrimSpace(taskID)]
	return task, ok
}

// All returns every task sorted by ID.
func (s *fileTaskStore) All() []models.Task {
	tasks := make([]models.Task, 0, len(s.data.Tasks))
	for _, task := range s.data.Tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

func (s *fileTaskStore) Load() error {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			s.data = emptyTaskFile()
			return nil
		}
		return fmt.Errorf("loading tasks: %w", err)
	}

	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("loading tasks: parsing YAML: %w", err)
	}
	if tf.Tasks == nil {
		tf.Tasks = make(map[string]models.Task)
	}
	if tf.Version == "" {
		tf.Version = "1.0"
	}
	// Keys are authoritative; a hand-edited entry may omit its id field.
	for id, task := range tf.Tasks {
		if task.ID != id {
			task.ID = id
			tf.Tasks[id] = task
		}
	}
	s.data = tf
	return nil
}

// Save writes the registry to a temporary file and renames it over
// tasks.yaml so readers never observe a partial write.
func (s *fileTaskStore) Save() error {
	if err := os.MkdirAll(s.basePath, 0o750); err != nil {
		return fmt.Errorf("saving tasks: creating directory: %w", err)
	}
	data, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("saving tasks: marshaling YAML: %w", err)
	}
	tmp := s.filePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving tasks: writing file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath()); err != nil {
		return fmt.Errorf("saving tasks: replacing file: %w", err)
	}
	return nil
}
