package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/internal/observability"
)

var (
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)
)

type dashboardModel struct {
	window   core.Window
	filter   core.TypeFilter
	interval time.Duration
	width    int
	height   int

	// Data.
	result      core.AggregateResult
	todayBadge  core.WeekBadge
	weekBadge   core.WeekBadge
	alerts      []observability.Alert
	refreshedAt time.Time

	// State.
	loading bool
	err     error
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	window     core.Window
	filter     core.TypeFilter
	now        time.Time
	result     core.AggregateResult
	todayBadge core.WeekBadge
	weekBadge  core.WeekBadge
	alerts     []observability.Alert
	err        error
}

// tickMsg re-derives every view so time-dependent states advance without
// any data change.
type tickMsg time.Time

func newDashboardModel(window core.Window, filter core.TypeFilter, interval time.Duration) dashboardModel {
	if interval <= 0 {
		interval = time.Minute
	}
	return dashboardModel{
		window:   window,
		filter:   filter,
		interval: interval,
		loading:  true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(loadDashboard(m.window, m.filter), tick(m.interval))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.window = nextWindow(m.window, 1)
			m.loading = true
			return m, loadDashboard(m.window, m.filter)
		case "shift+tab":
			m.window = nextWindow(m.window, -1)
			m.loading = true
			return m, loadDashboard(m.window, m.filter)
		case "f":
			m.filter = nextFilter(m.filter)
			m.loading = true
			return m, loadDashboard(m.window, m.filter)
		case "r":
			m.loading = true
			return m, loadDashboard(m.window, m.filter)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(loadDashboard(m.window, m.filter), tick(m.interval))

	case dataLoadedMsg:
		// Drop results for a selection the user has already moved away from.
		if msg.window != m.window || msg.filter != m.filter {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.result = msg.result
		m.todayBadge = msg.todayBadge
		m.weekBadge = msg.weekBadge
		m.alerts = msg.alerts
		m.refreshedAt = msg.now
		m.err = nil
		return m, nil
	}

	return m, nil
}

func nextWindow(w core.Window, step int) core.Window {
	n := len(core.Windows)
	for i, known := range core.Windows {
		if known == w {
			return core.Windows[((i+step)%n+n)%n]
		}
	}
	return core.Windows[0]
}

func nextFilter(f core.TypeFilter) core.TypeFilter {
	for i, known := range core.TypeFilters {
		if known == f {
			return core.TypeFilters[(i+1)%len(core.TypeFilters)]
		}
	}
	return core.TypeFilters[0]
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" pulse ")
	help := helpStyle.Render("tab: window | f: type filter | r: refresh | q: quit")

	if m.loading && m.refreshedAt.IsZero() {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	header := fmt.Sprintf("%s  window: %s  type: %s  today %d/%d  week %d/%d",
		title, m.window, m.filter,
		m.todayBadge.Completed, m.todayBadge.Total,
		m.weekBadge.Completed, m.weekBadge.Total)

	bucketsPanel := m.renderBucketsPanel()
	alertsPanel := m.renderAlertsPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 100 {
		colWidth := availableWidth / 2
		bucketsPanel = activePanelStyle.Width(colWidth - 4).Render(bucketsPanel)
		alertsPanel = panelStyle.Width(colWidth - 4).Render(alertsPanel)
		body = lipgloss.JoinHorizontal(lipgloss.Top, bucketsPanel, alertsPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		bucketsPanel = activePanelStyle.Width(panelWidth).Render(bucketsPanel)
		alertsPanel = panelStyle.Width(panelWidth).Render(alertsPanel)
		body = lipgloss.JoinVertical(lipgloss.Left, bucketsPanel, alertsPanel)
	}

	footer := helpStyle.Render("updated " + m.refreshedAt.Local().Format("15:04:05"))
	return fmt.Sprintf("%s\n\n%s\n\n%s  %s", header, body, help, footer)
}

func (m dashboardModel) renderBucketsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Subtasks (%d)", m.result.Total)))
	b.WriteString("\n\n")

	if m.result.Total == 0 {
		b.WriteString("  Nothing in this window.")
		return b.String()
	}

	buckets := []struct {
		status core.DerivedStatus
		view   core.BucketView
	}{
		{core.DerivedOverdue, m.result.Overdue},
		{core.DerivedInProgress, m.result.InProgress},
		{core.DerivedUpcoming, m.result.Upcoming},
		{core.DerivedCompleted, m.result.Done},
	}
	for _, bucket := range buckets {
		b.WriteString(fmt.Sprintf("%s %d\n", renderStatus(bucket.status), bucket.view.Count))
		for _, item := range bucket.view.Items {
			b.WriteString(fmt.Sprintf("  %-12s %s (%d)\n", item.TaskID, truncate(item.Title, 28), item.SubtaskCount))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(string(a.Severity)).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(a.Severity))))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.Message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

// loadDashboard snapshots the tasks and derives every panel from a single
// reference instant.
func loadDashboard(window core.Window, filter core.TypeFilter) tea.Cmd {
	return func() tea.Msg {
		now := Clock()
		result := dataLoadedMsg{window: window, filter: filter, now: now}

		if TaskMgr != nil {
			tasks, err := TaskMgr.GetAllTasks()
			if err != nil {
				result.err = fmt.Errorf("loading tasks: %w", err)
				return result
			}
			e := engine()
			result.result = e.Aggregate(tasks, window, filter, now)
			result.todayBadge = e.TodayBadgeCounts(tasks, now)
			result.weekBadge = e.WeekBadgeCounts(tasks, now)
		}

		if AlertEngine != nil {
			alerts, err := AlertEngine.Evaluate(now)
			if err != nil {
				result.err = fmt.Errorf("loading alerts: %w", err)
				return result
			}
			result.alerts = alerts
		}

		return result
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for subtask buckets and alerts",
	Long: `Launch an interactive terminal dashboard showing the upcoming, in
progress, done and overdue buckets for a time window, the today and week
badges, and active alerts.

The view re-derives itself every view.refresh_seconds so states advance
as time passes. Cycle windows with Tab, the type filter with f, refresh
with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		view := viewConfig()
		window, err := core.ParseWindow(view.Window)
		if err != nil {
			return err
		}
		filter, err := core.ParseTypeFilter(view.TypeFilter)
		if err != nil {
			return err
		}
		interval := time.Duration(view.RefreshSeconds) * time.Second

		p := tea.NewProgram(newDashboardModel(window, filter, interval), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
