package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (add, list, show, status, delete)",
	Long: `Task management commands.

Add deadline, recurring or idea tasks, list them with their derived state,
inspect a single task with its subtasks, change its lifecycle status, or
delete it.`,
}

var (
	taskAddType        string
	taskAddStart       string
	taskAddEnd         string
	taskAddDays        string
	taskAddDescription string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Long: `Add a new task.

Deadline tasks need --start and --end. Recurring tasks need --days, a
comma-separated weekday list such as mon,wed,fri. Ideas take neither.

Dates accept YYYY-MM-DD or YYYY-MM-DDTHH:MM in local time. A bare --end
date means the end of that day.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		taskType := models.TaskType(strings.ToLower(taskAddType))
		start, err := parseDateFlag(taskAddStart, false)
		if err != nil {
			return fmt.Errorf("parsing --start: %w", err)
		}
		end, err := parseDateFlag(taskAddEnd, true)
		if err != nil {
			return fmt.Errorf("parsing --end: %w", err)
		}
		days, err := parseWeekdays(taskAddDays)
		if err != nil {
			return fmt.Errorf("parsing --days: %w", err)
		}

		task, err := TaskMgr.CreateTask(core.CreateTaskOpts{
			Title:         strings.Join(args, " "),
			Description:   taskAddDescription,
			Type:          taskType,
			StartDate:     start,
			EndDate:       end,
			RecurringDays: days,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created task %s\n", task.ID)
		fmt.Fprintf(out, "  Title: %s\n", task.Title)
		fmt.Fprintf(out, "  Type:  %s\n", task.Type)
		switch task.Type {
		case models.TaskTypeDeadline:
			fmt.Fprintf(out, "  From:  %s\n", formatStamp(task.StartDate))
			fmt.Fprintf(out, "  To:    %s\n", formatStamp(task.EndDate))
		case models.TaskTypeRecurring:
			fmt.Fprintf(out, "  Every: %s\n", formatWeekdays(task.RecurringDays))
		}
		return nil
	},
}

var (
	taskListType string
	taskListSort string
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with their derived status",
	Long: `List tasks filtered by type and ordered by creation date or duration.

Open tasks come first, newest first; done tasks follow. Duration sorting
reorders deadline tasks only and leaves the others where they are.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		view := viewConfig()
		filter, err := core.ParseTypeFilter(firstNonEmpty(taskListType, view.TypeFilter))
		if err != nil {
			return err
		}
		mode, err := core.ParseSortMode(firstNonEmpty(taskListSort, view.Sort))
		if err != nil {
			return err
		}

		tasks, err := TaskMgr.GetAllTasks()
		if err != nil {
			return fmt.Errorf("fetching tasks: %w", err)
		}

		ordered := core.SortAndFilterAll(tasks, filter, mode)
		out := cmd.OutOrStdout()
		if len(ordered) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}
		printTaskTable(out, ordered)
		return nil
	},
}

func printTaskTable(out io.Writer, tasks []models.Task) {
	now := Clock()
	fmt.Fprintf(out, "  %-12s %-11s %-9s %-6s %-30s %s\n", "ID", "STATUS", "TYPE", "DONE", "TITLE", "TIME")
	fmt.Fprintf(out, "  %-12s %-11s %-9s %-6s %-30s %s\n", "--", "------", "----", "----", "-----", "----")
	for i := range tasks {
		task := &tasks[i]
		fmt.Fprintf(out, "  %-12s %s %-9s %-6s %-30s %s\n",
			task.ID,
			renderStatus(core.TaskStatus(task, now)),
			task.Type,
			completionColumn(task),
			truncate(task.Title, 30),
			taskTimeColumn(task, now),
		)
	}
}

func completionColumn(task *models.Task) string {
	if len(task.Subtasks) == 0 {
		return "-"
	}
	done := 0
	for _, s := range task.Subtasks {
		if s.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(task.Subtasks))
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task and its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		task, err := TaskMgr.GetTask(args[0])
		if err != nil {
			return err
		}
		printTaskDetail(cmd.OutOrStdout(), task)
		return nil
	},
}

func printTaskDetail(out io.Writer, task *models.Task) {
	now := Clock()
	fmt.Fprintf(out, "%s  %s\n", task.ID, task.Title)
	fmt.Fprintf(out, "  Type:      %s\n", task.Type)
	fmt.Fprintf(out, "  Status:    %s (%s)\n", task.Status, core.TaskStatus(task, now))
	fmt.Fprintf(out, "  Created:   %s\n", formatStamp(&task.CreatedAt))
	switch task.Type {
	case models.TaskTypeDeadline:
		fmt.Fprintf(out, "  Window:    %s -> %s\n", formatStamp(task.StartDate), formatStamp(task.EndDate))
	case models.TaskTypeRecurring:
		fmt.Fprintf(out, "  Every:     %s\n", formatWeekdays(task.RecurringDays))
	}
	fmt.Fprintf(out, "  Time:      %s\n", taskTimeColumn(task, now))
	if task.Description != "" {
		fmt.Fprintf(out, "  Notes:     %s\n", task.Description)
	}
	if len(task.Subtasks) == 0 {
		fmt.Fprintln(out, "\n  No subtasks.")
		return
	}

	fmt.Fprintf(out, "\n  Subtasks (%d%% complete):\n", core.CompletionPercent(task))
	for i := range task.Subtasks {
		sub := &task.Subtasks[i]
		fmt.Fprintf(out, "  %s %s %-36s %-30s %s\n",
			checkbox(sub.Completed),
			renderStatus(core.SubtaskStatus(task, sub, now)),
			sub.ID,
			truncate(sub.Title, 30),
			subtaskTimeColumn(sub, now),
		)
		for _, a := range sub.Attachments {
			fmt.Fprintf(out, "        attachment: %s (%s)\n", a.Name, a.URI)
		}
	}
	if core.IsDoneLocked(task) && task.Status != models.StatusDone {
		fmt.Fprintln(out, "\n  Open subtasks keep this task from being marked done.")
	}
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <todo|in_progress|done>",
	Short: "Set the lifecycle status of a task",
	Long: `Set the lifecycle status of a task.

A deadline or recurring task cannot be marked done while any of its
subtasks is still open.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		status := models.TaskStatus(strings.ToLower(args[1]))
		if err := TaskMgr.UpdateTaskStatus(args[0], status); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", args[0], status)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <task-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task and its subtasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		if err := TaskMgr.DeleteTask(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskAddType, "type", "t", string(models.TaskTypeDeadline), "Task type (deadline, recurring, idea)")
	taskAddCmd.Flags().StringVar(&taskAddStart, "start", "", "Start date for deadline tasks")
	taskAddCmd.Flags().StringVar(&taskAddEnd, "end", "", "End date for deadline tasks")
	taskAddCmd.Flags().StringVar(&taskAddDays, "days", "", "Weekdays for recurring tasks (e.g. mon,wed,fri)")
	taskAddCmd.Flags().StringVarP(&taskAddDescription, "description", "d", "", "Optional description")

	taskListCmd.Flags().StringVar(&taskListType, "type", "", "Filter by type (all, deadline, recurring, idea)")
	taskListCmd.Flags().StringVar(&taskListSort, "sort", "", "Sort mode (created, duration_asc, duration_desc)")

	_ = taskAddCmd.RegisterFlagCompletionFunc("type", completeTaskTypes)
	_ = taskListCmd.RegisterFlagCompletionFunc("type", completeTypeFilters)
	_ = taskListCmd.RegisterFlagCompletionFunc("sort", completeSortModes)

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskStatusCmd, taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}
