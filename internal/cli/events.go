package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pulse/internal/observability"
)

var (
	eventsType  string
	eventsSince string
	eventsLimit int
	eventsJSON  bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent entries from the event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		filter := observability.EventFilter{Type: eventsType, Limit: eventsLimit}
		if eventsSince != "" {
			since, err := parseSinceDuration(eventsSince, Clock())
			if err != nil {
				return fmt.Errorf("parsing --since: %w", err)
			}
			filter.Since = &since
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}

		out := cmd.OutOrStdout()
		if eventsJSON {
			enc := json.NewEncoder(out)
			for _, e := range events {
				if err := enc.Encode(e); err != nil {
					return fmt.Errorf("encoding event: %w", err)
				}
			}
			return nil
		}
		if len(events) == 0 {
			fmt.Fprintln(out, "No events recorded.")
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s  %-5s %-20s %s\n", e.Time.Local().Format("2006-01-02 15:04:05"), e.Level, e.Type, formatEventData(e.Data))
		}
		return nil
	},
}

func formatEventData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(parts, " ")
}

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Only show events of this type or family (e.g. task.created, subtask)")
	eventsCmd.Flags().StringVar(&eventsSince, "since", "", "Only show events newer than this (e.g. 7d, 24h)")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "Show at most this many of the latest events (0 for all)")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Output raw JSON lines")
	rootCmd.AddCommand(eventsCmd)
}
