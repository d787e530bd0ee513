package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	pulsemcp "github.com/valter-silva-au/pulse/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for exposing pulse task state over the Model Context Protocol.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pulse tools over MCP on stdio",
	Long: `Serve pulse over the MCP stdio transport until the client disconnects.

Tools: list_tasks, get_task, aggregate, week_badge, update_task_status,
toggle_subtask and get_alerts. Every call derives state from the current
time and the workspace's week start.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := newMCPServer()
		if err != nil {
			return err
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		// stdout carries the protocol; status goes to stderr.
		fmt.Fprintf(cmd.ErrOrStderr(), "pulse %s serving MCP on stdio\n", appVersion)
		if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func newMCPServer() (*pulsemcp.Server, error) {
	if TaskMgr == nil {
		return nil, fmt.Errorf("task manager not initialized")
	}
	return pulsemcp.NewServer(TaskMgr, engine(), AlertEngine, labels(), Clock, appVersion), nil
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
