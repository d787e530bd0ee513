package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/pkg/models"
)

// Style definitions shared by the plain CLI output and the dashboard.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	statusUpcoming   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusOverdue    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusDraft      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func styleForStatus(status core.DerivedStatus) lipgloss.Style {
	switch status {
	case core.DerivedUpcoming:
		return statusUpcoming
	case core.DerivedInProgress:
		return statusInProgress
	case core.DerivedOverdue:
		return statusOverdue
	case core.DerivedCompleted:
		return statusCompleted
	case core.DerivedDraft:
		return statusDraft
	default:
		return lipgloss.NewStyle()
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

// renderStatus renders a derived status padded to a fixed column width.
func renderStatus(status core.DerivedStatus) string {
	return styleForStatus(status).Render(fmt.Sprintf("%-11s", status))
}

// progressBar draws a fixed-width bar for a percentage in [0,100].
func progressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct/100*float64(width) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// taskTimeColumn summarises the time-dependent state of a task: remaining
// time for deadline tasks, recurrence for recurring tasks.
func taskTimeColumn(task *models.Task, now time.Time) string {
	switch task.Type {
	case models.TaskTypeDeadline:
		pct, ok := core.TaskProgress(task, now)
		if !ok {
			return "no dates"
		}
		remaining := core.RemainingLabel(*task.EndDate, now, task.Status == models.StatusDone, labels())
		return fmt.Sprintf("%s %3.0f%% %s", progressBar(pct, 10), pct, remaining)
	case models.TaskTypeRecurring:
		marker := ""
		if core.ActiveToday(task, now) {
			marker = " (today)"
		}
		return "every " + formatWeekdays(task.RecurringDays) + marker
	default:
		return "created " + task.CreatedAt.Local().Format("2006-01-02")
	}
}

// subtaskTimeColumn renders progress and remaining time of a dated subtask.
func subtaskTimeColumn(sub *models.Subtask, now time.Time) string {
	label, ok := core.SubtaskRemainingLabel(sub, now, labels())
	if !ok {
		if sub.ManuallyStarted {
			return "started"
		}
		return ""
	}
	pct, ok := core.SubtaskProgress(sub, now)
	if !ok {
		return label
	}
	return fmt.Sprintf("%s %3.0f%% %s", progressBar(pct, 10), pct, label)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
