package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/pkg/models"
)

var subtaskCmd = &cobra.Command{
	Use:     "subtask",
	Aliases: []string{"sub"},
	Short:   "Manage subtasks (add, toggle, start)",
}

var (
	subtaskAddStart       string
	subtaskAddEnd         string
	subtaskAddDescription string
	subtaskAddAttach      []string
)

var subtaskAddCmd = &cobra.Command{
	Use:   "add <task-id> <title>",
	Short: "Add a subtask to a task",
	Long: `Add a subtask to a task.

Only subtasks of deadline tasks may have --start/--end, and those dates
must fall within the parent task's days. Attachments are given as
name=uri pairs.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		start, err := parseDateFlag(subtaskAddStart, false)
		if err != nil {
			return fmt.Errorf("parsing --start: %w", err)
		}
		end, err := parseDateFlag(subtaskAddEnd, true)
		if err != nil {
			return fmt.Errorf("parsing --end: %w", err)
		}
		attachments, err := parseAttachments(subtaskAddAttach)
		if err != nil {
			return err
		}

		sub, err := TaskMgr.AddSubtask(args[0], core.SubtaskOpts{
			Title:       strings.Join(args[1:], " "),
			Description: subtaskAddDescription,
			StartDate:   start,
			EndDate:     end,
			Attachments: attachments,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added subtask %s to %s\n", sub.ID, args[0])
		return nil
	},
}

func parseAttachments(values []string) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, v := range values {
		name, uri, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(uri) == "" {
			return nil, fmt.Errorf("invalid attachment %q (use name=uri)", v)
		}
		out = append(out, models.Attachment{Name: strings.TrimSpace(name), URI: strings.TrimSpace(uri)})
	}
	return out, nil
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle <task-id> <subtask-id>",
	Short: "Flip a subtask between open and completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		sub, err := TaskMgr.ToggleSubtask(args[0], args[1])
		if err != nil {
			return err
		}
		state := "open"
		if sub.Completed {
			state = "completed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subtask %s is now %s\n", sub.ID, state)
		return nil
	},
}

var subtaskStartCmd = &cobra.Command{
	Use:   "start <task-id> <subtask-id>",
	Short: "Mark a subtask as started today",
	Long: `Mark an open subtask as manually started. A started subtask counts as
in progress today regardless of its dates or recurrence day.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		sub, err := TaskMgr.StartSubtask(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started subtask %s\n", sub.ID)
		return nil
	},
}

func init() {
	subtaskAddCmd.Flags().StringVar(&subtaskAddStart, "start", "", "Start date (deadline tasks only)")
	subtaskAddCmd.Flags().StringVar(&subtaskAddEnd, "end", "", "End date (deadline tasks only)")
	subtaskAddCmd.Flags().StringVarP(&subtaskAddDescription, "description", "d", "", "Optional description")
	subtaskAddCmd.Flags().StringSliceVar(&subtaskAddAttach, "attach", nil, "Attachment as name=uri (repeatable)")

	subtaskCmd.AddCommand(subtaskAddCmd, subtaskToggleCmd, subtaskStartCmd)
	rootCmd.AddCommand(subtaskCmd)
}
