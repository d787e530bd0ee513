package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// completeTaskIDs returns a completion function that lists task IDs,
// optionally filtered to exclude certain statuses. It only completes the
// first positional argument.
func completeTaskIDs(excludeStatuses ...models.TaskStatus) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if TaskMgr == nil || len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		tasks, err := TaskMgr.GetAllTasks()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		exclude := make(map[models.TaskStatus]bool)
		for _, s := range excludeStatuses {
			exclude[s] = true
		}

		var ids []string
		for _, task := range tasks {
			if exclude[task.Status] {
				continue
			}
			if toComplete == "" || strings.HasPrefix(task.ID, toComplete) {
				ids = append(ids, task.ID+"\t"+string(task.Type)+": "+task.Title)
			}
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeSubtaskArgs completes a task ID first, then the IDs of that task's
// subtasks.
func completeSubtaskArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completeTaskIDs(models.StatusDone)(cmd, args, toComplete)
	}
	if TaskMgr == nil || len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	task, err := TaskMgr.GetTask(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, sub := range task.Subtasks {
		if toComplete == "" || strings.HasPrefix(sub.ID, toComplete) {
			ids = append(ids, sub.ID+"\t"+checkbox(sub.Completed)+" "+sub.Title)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeStatusArgs completes a task ID, then a lifecycle status.
func completeStatusArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return completeTaskIDs()(cmd, args, toComplete)
	case 1:
		return []string{
			"todo\tNot started",
			"in_progress\tActively being worked on",
			"done\tCompleted (requires all subtasks complete)",
		}, cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

func completeWindows(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(core.Windows))
	for i, w := range core.Windows {
		out[i] = string(w)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeTypeFilters(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(core.TypeFilters))
	for i, f := range core.TypeFilters {
		out[i] = string(f)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeTaskTypes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"deadline\tDate-ranged task with start and end",
		"recurring\tRepeats on weekdays",
		"idea\tUndated",
	}, cobra.ShellCompDirectiveNoFileComp
}

func completeSortModes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(core.SortCreated) + "\tNewest first",
		string(core.SortDurationAsc) + "\tShortest deadline tasks first",
		string(core.SortDurationDesc) + "\tLongest deadline tasks first",
	}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	taskShowCmd.ValidArgsFunction = completeTaskIDs()
	taskDeleteCmd.ValidArgsFunction = completeTaskIDs()
	taskStatusCmd.ValidArgsFunction = completeStatusArgs
	subtaskAddCmd.ValidArgsFunction = completeTaskIDs(models.StatusDone)
	subtaskToggleCmd.ValidArgsFunction = completeSubtaskArgs
	subtaskStartCmd.ValidArgsFunction = completeSubtaskArgs
}
