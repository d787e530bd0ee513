package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valter-silva-au/pulse/internal/observability"
)

func resetEventsFlags(t *testing.T) {
	t.Cleanup(func() {
		eventsType, eventsSince = "", ""
		eventsLimit = 20
		eventsJSON = false
	})
}

func TestEventsCmd_NilEventLog(t *testing.T) {
	orig := EventLog
	defer func() { EventLog = orig }()
	EventLog = nil

	err := eventsCmd.RunE(eventsCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestEventsCmd_Empty(t *testing.T) {
	setupCLI(t)
	resetEventsFlags(t)

	out, err := run(t, eventsCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No events recorded.")
}

func TestEventsCmd_FilterAndLimit(t *testing.T) {
	f := setupCLI(t)
	resetEventsFlags(t)
	seedWeek(t, f)

	eventsType = observability.EventSubtaskAdded
	eventsLimit = 2
	eventsJSON = true

	out, err := run(t, eventsCmd)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var e observability.Event
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		assert.Equal(t, observability.EventSubtaskAdded, e.Type)
	}
}

func TestEventsCmd_TextOutput(t *testing.T) {
	f := setupCLI(t)
	resetEventsFlags(t)
	f.seedDeadline(t, "Launch")

	out, err := run(t, eventsCmd)
	require.NoError(t, err)
	assert.Contains(t, out, observability.EventTaskCreated)
	assert.Contains(t, out, "task_id=TASK-00001")
	assert.Contains(t, out, "type=deadline")
}

func TestFormatEventData_SortedKeys(t *testing.T) {
	got := formatEventData(map[string]any{"z": 1, "a": "x"})
	assert.Equal(t, "a=x z=1", got)
}
