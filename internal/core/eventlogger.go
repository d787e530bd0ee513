package core

// EventLogger receives the task.* and subtask.* events emitted after each
// successful mutation. The app wires it to the JSONL event log; nil disables
// event emission.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}
