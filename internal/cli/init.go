package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pulse/internal/core"
)

// WorkspaceInit is the WorkspaceInitializer used by the init command.
// Set during application wiring.
var WorkspaceInit core.WorkspaceInitializer

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a pulse workspace",
	Long: `Initialize a directory as a pulse home: a commented .pulseconfig, an
empty tasks.yaml and the task ID counter.

Safe to run on an existing workspace -- files that already exist are
skipped and not overwritten. Point PULSE_HOME at the directory, or run
pulse from inside it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if WorkspaceInit == nil {
			return fmt.Errorf("workspace initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		name, _ := cmd.Flags().GetString("name")
		prefix, _ := cmd.Flags().GetString("prefix")
		weekStart, _ := cmd.Flags().GetString("week-start")

		result, err := WorkspaceInit.Init(core.InitConfig{
			BasePath:     absPath,
			Name:         name,
			Prefix:       prefix,
			WeekStartsOn: weekStart,
		})
		if err != nil {
			return fmt.Errorf("initializing workspace: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(result.Created) > 0 {
			fmt.Fprintln(out, "Created:")
			for _, p := range result.Created {
				fmt.Fprintf(out, "  %s\n", relativeTo(absPath, p))
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Fprintln(out, "Skipped (already exist):")
			for _, p := range result.Skipped {
				fmt.Fprintf(out, "  %s\n", relativeTo(absPath, p))
			}
		}

		fmt.Fprintf(out, "\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

func relativeTo(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return rel
}

func init() {
	initCmd.Flags().String("name", "", "Workspace name (defaults to directory basename)")
	initCmd.Flags().String("prefix", "TASK", "Task ID prefix")
	initCmd.Flags().String("week-start", "monday", "First day of the week for week windows")
	rootCmd.AddCommand(initCmd)
}
