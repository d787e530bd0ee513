package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "pulse - deadline, recurring and idea task tracker",
	Long: `pulse tracks three kinds of work: date-ranged deadline tasks, weekly
recurring tasks and undated ideas, each split into subtasks.

From the stored tasks and the current time it derives whether each subtask
is upcoming, in progress, overdue or done, how much of its time is left,
and how many subtasks fall into today, this week, this month or all time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return pinClock(rootAt)
	},
}

// rootAt holds --at, which pins the reference instant for derived views.
var rootAt string

// pinClock replaces Clock with a fixed instant when at is non-empty.
func pinClock(at string) error {
	t, err := parseDateFlag(at, false)
	if err != nil {
		return fmt.Errorf("parsing --at: %w", err)
	}
	if t != nil {
		fixed := *t
		Clock = func() time.Time { return fixed }
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pulse %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootAt, "at", "",
		"Evaluate as if it were this time (YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
