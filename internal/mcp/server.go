// Package mcp provides an MCP (Model Context Protocol) server that exposes
// pulse task state and aggregation as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/internal/observability"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// Server wraps pulse services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	taskMgr     core.TaskManager
	engine      *core.Engine
	alertEngine observability.AlertEngine
	labels      core.LabelSet
	now         func() time.Time
}

// NewServer creates a new MCP server over the given services. alertEngine
// may be nil; now defaults to time.Now.
func NewServer(taskMgr core.TaskManager, engine *core.Engine, alertEngine observability.AlertEngine, labels core.LabelSet, now func() time.Time, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if engine == nil {
		engine = core.NewEngine(time.Monday)
	}
	if now == nil {
		now = time.Now
	}

	s := &Server{
		taskMgr:     taskMgr,
		engine:      engine,
		alertEngine: alertEngine,
		labels:      labels,
		now:         now,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "pulse", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Type              string   `json:"type"`
	Status            string   `json:"status"`
	DerivedStatus     string   `json:"derived_status"`
	CompletionPercent int      `json:"completion_percent"`
	TimeLeftPercent   *float64 `json:"time_left_percent,omitempty"`
	Remaining         string   `json:"remaining,omitempty"`
	StartDate         string   `json:"start_date,omitempty"`
	EndDate           string   `json:"end_date,omitempty"`
	RecurringDays     []string `json:"recurring_days,omitempty"`
	SubtaskCount      int      `json:"subtask_count"`
	Created           string   `json:"created"`
}

type subtaskOutput struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Completed       bool                `json:"completed"`
	ManuallyStarted bool                `json:"manually_started"`
	DerivedStatus   string              `json:"derived_status"`
	TimeLeftPercent *float64            `json:"time_left_percent,omitempty"`
	Remaining       string              `json:"remaining,omitempty"`
	StartDate       string              `json:"start_date,omitempty"`
	EndDate         string              `json:"end_date,omitempty"`
	Attachments     []models.Attachment `json:"attachments,omitempty"`
}

type taskDetailOutput struct {
	Task        taskOutput      `json:"task"`
	Description string          `json:"description,omitempty"`
	DoneLocked  bool            `json:"done_locked"`
	Subtasks    []subtaskOutput `json:"subtasks"`
}

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"the task identifier, e.g. TASK-00042"`
}

type listTasksInput struct {
	Type string `json:"type,omitempty" jsonschema:"filter by task type: all, deadline, recurring or idea"`
	Sort string `json:"sort,omitempty" jsonschema:"ordering: created, duration_asc or duration_desc"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type aggregateInput struct {
	Window string `json:"window,omitempty" jsonschema:"time window: today, week, month or all. Defaults to today."`
	Type   string `json:"type,omitempty" jsonschema:"filter by task type: all, deadline, recurring or idea"`
}

type aggregateOutput struct {
	Now        string               `json:"now"`
	Window     string               `json:"window"`
	TypeFilter string               `json:"type_filter"`
	Result     core.AggregateResult `json:"result"`
}

type weekBadgeInput struct{}

type weekBadgeOutput struct {
	Now   string         `json:"now"`
	Today core.WeekBadge `json:"today"`
	Week  core.WeekBadge `json:"week"`
}

type updateTaskStatusInput struct {
	TaskID string `json:"task_id" jsonschema:"the task identifier, e.g. TASK-00042"`
	Status string `json:"status" jsonschema:"the new status: todo, in_progress or done"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type toggleSubtaskInput struct {
	TaskID    string `json:"task_id" jsonschema:"the parent task identifier"`
	SubtaskID string `json:"subtask_id" jsonschema:"the subtask identifier"`
}

type toggleSubtaskOutput struct {
	Subtask subtaskOutput `json:"subtask"`
	Message string        `json:"message"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	TaskID      string `json:"task_id"`
	SubtaskID   string `json:"subtask_id,omitempty"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with their derived status, completion and remaining time. Optional type filter and sort mode.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get one task with every subtask and its derived status, time-left percentage and remaining-time label.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "aggregate",
		Description: "Count subtasks relevant to a time window into upcoming, in progress, done and overdue buckets.",
	}, s.handleAggregate)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "week_badge",
		Description: "Return completed/total subtask counts for today and for the current week.",
	}, s.handleWeekBadge)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task_status",
		Description: "Update a task's lifecycle status (todo, in_progress, done). Done is refused while subtasks are open.",
	}, s.handleUpdateTaskStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "toggle_subtask",
		Description: "Flip a subtask between open and completed.",
	}, s.handleToggleSubtask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (overdue work, subtasks due soon, tasks ready to close).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	filter, err := core.ParseTypeFilter(input.Type)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}
	mode, err := core.ParseSortMode(input.Sort)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}

	tasks, err := s.taskMgr.GetAllTasks()
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}

	now := s.now()
	ordered := core.SortAndFilterAll(tasks, filter, mode)
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(ordered)),
		Count: len(ordered),
	}
	for i := range ordered {
		out.Tasks[i] = s.taskToOutput(&ordered[i], now)
	}

	return nil, out, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskDetailOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskDetailOutput{}, nil
	}

	task, err := s.taskMgr.GetTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskDetailOutput{}, nil
	}

	now := s.now()
	out := taskDetailOutput{
		Task:        s.taskToOutput(task, now),
		Description: task.Description,
		DoneLocked:  core.IsDoneLocked(task),
		Subtasks:    make([]subtaskOutput, len(task.Subtasks)),
	}
	for i := range task.Subtasks {
		out.Subtasks[i] = s.subtaskToOutput(task, &task.Subtasks[i], now)
	}
	return nil, out, nil
}

func (s *Server) handleAggregate(_ context.Context, _ *gomcp.CallToolRequest, input aggregateInput) (*gomcp.CallToolResult, aggregateOutput, error) {
	windowName := input.Window
	if windowName == "" {
		windowName = string(core.WindowToday)
	}
	window, err := core.ParseWindow(windowName)
	if err != nil {
		return errorResult(err.Error()), aggregateOutput{}, nil
	}
	filter, err := core.ParseTypeFilter(input.Type)
	if err != nil {
		return errorResult(err.Error()), aggregateOutput{}, nil
	}

	tasks, err := s.taskMgr.GetAllTasks()
	if err != nil {
		return errorResult(fmt.Sprintf("loading tasks: %s", err)), aggregateOutput{}, nil
	}

	now := s.now()
	return nil, aggregateOutput{
		Now:        now.Format(time.RFC3339),
		Window:     string(window),
		TypeFilter: string(filter),
		Result:     s.engine.Aggregate(tasks, window, filter, now),
	}, nil
}

func (s *Server) handleWeekBadge(_ context.Context, _ *gomcp.CallToolRequest, _ weekBadgeInput) (*gomcp.CallToolResult, weekBadgeOutput, error) {
	tasks, err := s.taskMgr.GetAllTasks()
	if err != nil {
		return errorResult(fmt.Sprintf("loading tasks: %s", err)), weekBadgeOutput{}, nil
	}

	now := s.now()
	return nil, weekBadgeOutput{
		Now:   now.Format(time.RFC3339),
		Today: s.engine.TodayBadgeCounts(tasks, now),
		Week:  s.engine.WeekBadgeCounts(tasks, now),
	}, nil
}

func (s *Server) handleUpdateTaskStatus(_ context.Context, _ *gomcp.CallToolRequest, input updateTaskStatusInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), messageOutput{}, nil
	}
	status := models.TaskStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	if !status.Valid() {
		return errorResult(fmt.Sprintf("invalid status %q: must be one of todo, in_progress, done", input.Status)), messageOutput{}, nil
	}

	if err := s.taskMgr.UpdateTaskStatus(input.TaskID, status); err != nil {
		return errorResult(fmt.Sprintf("updating task %s status: %s", input.TaskID, err)), messageOutput{}, nil
	}

	return nil, messageOutput{
		Message: fmt.Sprintf("task %s status updated to %s", input.TaskID, status),
	}, nil
}

func (s *Server) handleToggleSubtask(_ context.Context, _ *gomcp.CallToolRequest, input toggleSubtaskInput) (*gomcp.CallToolResult, toggleSubtaskOutput, error) {
	if input.TaskID == "" || input.SubtaskID == "" {
		return errorResult("task_id and subtask_id are required"), toggleSubtaskOutput{}, nil
	}

	if _, err := s.taskMgr.ToggleSubtask(input.TaskID, input.SubtaskID); err != nil {
		return errorResult(fmt.Sprintf("toggling subtask %s of %s: %s", input.SubtaskID, input.TaskID, err)), toggleSubtaskOutput{}, nil
	}

	// Reload so the derived state reflects any parent status change.
	task, err := s.taskMgr.GetTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("reloading task %s: %s", input.TaskID, err)), toggleSubtaskOutput{}, nil
	}
	idx := task.SubtaskIndex(input.SubtaskID)
	if idx < 0 {
		return errorResult(fmt.Sprintf("subtask %s disappeared from %s", input.SubtaskID, input.TaskID)), toggleSubtaskOutput{}, nil
	}

	sub := s.subtaskToOutput(task, &task.Subtasks[idx], s.now())
	state := "open"
	if sub.Completed {
		state = "completed"
	}
	return nil, toggleSubtaskOutput{
		Subtask: sub,
		Message: fmt.Sprintf("subtask %s is now %s", input.SubtaskID, state),
	}, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate(s.now())
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			TaskID:      a.TaskID,
			SubtaskID:   a.SubtaskID,
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func (s *Server) taskToOutput(t *models.Task, now time.Time) taskOutput {
	out := taskOutput{
		ID:                t.ID,
		Title:             t.Title,
		Type:              string(t.Type),
		Status:            string(t.Status),
		DerivedStatus:     string(core.TaskStatus(t, now)),
		CompletionPercent: core.CompletionPercent(t),
		StartDate:         formatTime(t.StartDate),
		EndDate:           formatTime(t.EndDate),
		SubtaskCount:      len(t.Subtasks),
		Created:           t.CreatedAt.Format(time.RFC3339),
	}
	if pct, ok := core.TaskProgress(t, now); ok {
		out.TimeLeftPercent = &pct
		out.Remaining = core.RemainingLabel(*t.EndDate, now, t.Status == models.StatusDone, s.labels)
	}
	for _, d := range t.RecurringDays {
		out.RecurringDays = append(out.RecurringDays, strings.ToLower(d.String()))
	}
	return out
}

func (s *Server) subtaskToOutput(t *models.Task, sub *models.Subtask, now time.Time) subtaskOutput {
	out := subtaskOutput{
		ID:              sub.ID,
		Title:           sub.Title,
		Completed:       sub.Completed,
		ManuallyStarted: sub.ManuallyStarted,
		DerivedStatus:   string(core.SubtaskStatus(t, sub, now)),
		StartDate:       formatTime(sub.StartDate),
		EndDate:         formatTime(sub.EndDate),
		Attachments:     sub.Attachments,
	}
	if pct, ok := core.SubtaskProgress(sub, now); ok {
		out.TimeLeftPercent = &pct
	}
	if label, ok := core.SubtaskRemainingLabel(sub, now, s.labels); ok {
		out.Remaining = label
	}
	return out
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
