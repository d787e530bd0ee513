package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/internal/observability"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// summaryReport is the JSON shape of `pulse summary --json`.
type summaryReport struct {
	Now        time.Time            `json:"now"`
	Window     core.Window          `json:"window"`
	TypeFilter core.TypeFilter      `json:"type_filter"`
	Result     core.AggregateResult `json:"result"`
	TodayBadge core.WeekBadge       `json:"today_badge"`
	WeekBadge  core.WeekBadge       `json:"week_badge"`
}

var (
	summaryWindow string
	summaryType   string
	summaryJSON   bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count subtasks per status for a time window",
	Long: `Aggregate subtasks relevant to a time window into upcoming, in progress,
done and overdue buckets, each listing the contributing tasks.

Windows: today, week, month, all. Ideas never count toward a window.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		view := viewConfig()
		window, err := core.ParseWindow(firstNonEmpty(summaryWindow, view.Window))
		if err != nil {
			return err
		}
		filter, err := core.ParseTypeFilter(firstNonEmpty(summaryType, view.TypeFilter))
		if err != nil {
			return err
		}

		tasks, err := TaskMgr.GetAllTasks()
		if err != nil {
			return fmt.Errorf("fetching tasks: %w", err)
		}

		report := buildSummary(tasks, window, filter, Clock())
		logEvent(observability.EventSummaryViewed, map[string]any{
			"window":      string(window),
			"type_filter": string(filter),
			"total":       report.Result.Total,
		})

		out := cmd.OutOrStdout()
		if summaryJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting summary as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		printSummary(out, report)
		return nil
	},
}

func buildSummary(tasks []models.Task, window core.Window, filter core.TypeFilter, now time.Time) summaryReport {
	e := engine()
	return summaryReport{
		Now:        now,
		Window:     window,
		TypeFilter: filter,
		Result:     e.Aggregate(tasks, window, filter, now),
		TodayBadge: e.TodayBadgeCounts(tasks, now),
		WeekBadge:  e.WeekBadgeCounts(tasks, now),
	}
}

func printSummary(out io.Writer, r summaryReport) {
	fmt.Fprintf(out, "Summary for %s (%s tasks) at %s\n\n", r.Window, r.TypeFilter, r.Now.Format("Mon 2006-01-02 15:04"))
	fmt.Fprintf(out, "  Today: %d/%d done   This week: %d/%d done\n\n",
		r.TodayBadge.Completed, r.TodayBadge.Total, r.WeekBadge.Completed, r.WeekBadge.Total)

	buckets := []struct {
		status core.DerivedStatus
		view   core.BucketView
	}{
		{core.DerivedOverdue, r.Result.Overdue},
		{core.DerivedInProgress, r.Result.InProgress},
		{core.DerivedUpcoming, r.Result.Upcoming},
		{core.DerivedCompleted, r.Result.Done},
	}
	for _, b := range buckets {
		fmt.Fprintf(out, "  %s %d\n", renderStatus(b.status), b.view.Count)
		for _, item := range b.view.Items {
			fmt.Fprintf(out, "      %-12s %-30s x%d\n", item.TaskID, truncate(item.Title, 30), item.SubtaskCount)
		}
	}
	fmt.Fprintf(out, "\n  Total subtasks: %d\n", r.Result.Total)
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List the tasks and subtasks relevant today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		tasks, err := TaskMgr.GetAllTasks()
		if err != nil {
			return fmt.Errorf("fetching tasks: %w", err)
		}
		printToday(cmd.OutOrStdout(), tasks, Clock())
		return nil
	},
}

func printToday(out io.Writer, tasks []models.Task, now time.Time) {
	relevant := core.RelevantTasks(tasks, now)
	badge := engine().TodayBadgeCounts(tasks, now)
	fmt.Fprintf(out, "%s  %d/%d done\n", now.Format("Monday 2006-01-02"), badge.Completed, badge.Total)

	if len(relevant) == 0 {
		fmt.Fprintln(out, "\n  Nothing scheduled for today.")
		return
	}
	for i := range relevant {
		task := &relevant[i]
		fmt.Fprintf(out, "\n  %s %s  %s\n", task.ID, renderStatus(core.TaskStatus(task, now)), task.Title)
		for j := range task.Subtasks {
			sub := &task.Subtasks[j]
			if task.Type != models.TaskTypeIdea && !core.IsSubtaskRelevantToDay(task, sub, now) {
				continue
			}
			fmt.Fprintf(out, "    %s %-30s %s\n", checkbox(sub.Completed), truncate(sub.Title, 30), subtaskTimeColumn(sub, now))
		}
	}
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryWindow, "window", "w", "", "Time window (today, week, month, all)")
	summaryCmd.Flags().StringVar(&summaryType, "type", "", "Task type filter (all, deadline, recurring, idea)")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output the summary as JSON")
	_ = summaryCmd.RegisterFlagCompletionFunc("window", completeWindows)
	_ = summaryCmd.RegisterFlagCompletionFunc("type", completeTypeFilters)
	rootCmd.AddCommand(summaryCmd, todayCmd)
}
