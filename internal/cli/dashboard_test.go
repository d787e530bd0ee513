package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/valter-silva-au/pulse/internal/core"
	"github.com/valter-silva-au/pulse/internal/observability"
)

// mockDashboardAlerts implements observability.AlertEngine.
type mockDashboardAlerts struct {
	alerts []observability.Alert
	err    error
}

func (m *mockDashboardAlerts) Evaluate(time.Time) ([]observability.Alert, error) {
	return m.alerts, m.err
}

func newTestDashboard() dashboardModel {
	return newDashboardModel(core.WindowToday, core.FilterAll, time.Minute)
}

func TestDashboardModel_Init(t *testing.T) {
	m := newTestDashboard()

	if !m.loading {
		t.Error("expected loading = true on init")
	}
	if m.Init() == nil {
		t.Error("expected Init to return a non-nil command")
	}
}

func TestDashboardModel_DefaultInterval(t *testing.T) {
	m := newDashboardModel(core.WindowWeek, core.FilterAll, 0)
	if m.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", m.interval)
	}
}

func TestDashboardModel_TabCyclesWindows(t *testing.T) {
	m := newTestDashboard()
	want := []core.Window{core.WindowWeek, core.WindowMonth, core.WindowAll, core.WindowToday}

	for _, w := range want {
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = updated.(dashboardModel)
		if m.window != w {
			t.Fatalf("window = %s, want %s", m.window, w)
		}
		if cmd == nil {
			t.Fatal("expected a reload command after switching window")
		}
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(dashboardModel)
	if m.window != core.WindowAll {
		t.Errorf("shift+tab from today = %s, want all", m.window)
	}
}

func TestDashboardModel_FilterCycles(t *testing.T) {
	m := newTestDashboard()
	for _, want := range []core.TypeFilter{core.FilterDeadline, core.FilterRecurring, core.FilterIdea, core.FilterAll} {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
		m = updated.(dashboardModel)
		if m.filter != want {
			t.Fatalf("filter = %s, want %s", m.filter, want)
		}
	}
}

func TestDashboardModel_Quit(t *testing.T) {
	m := newTestDashboard()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestDashboardModel_IgnoresStaleData(t *testing.T) {
	m := newTestDashboard()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(dashboardModel)

	stale := dataLoadedMsg{window: core.WindowToday, filter: core.FilterAll, now: cliNow, result: core.AggregateResult{Total: 9}}
	updated, _ = m.Update(stale)
	m = updated.(dashboardModel)
	if !m.loading || m.result.Total != 0 {
		t.Error("data for a previous window should be dropped")
	}
}

func TestDashboardModel_TickReloads(t *testing.T) {
	m := newTestDashboard()
	_, cmd := m.Update(tickMsg(cliNow))
	if cmd == nil {
		t.Fatal("tick should schedule a reload and the next tick")
	}
}

func TestLoadDashboard_DerivesFromEngine(t *testing.T) {
	f := setupCLI(t)
	seedWeek(t, f)

	msg := loadDashboard(core.WindowWeek, core.FilterAll)().(dataLoadedMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if msg.result.Total != 3 || msg.result.Overdue.Count != 1 {
		t.Errorf("result = %+v", msg.result)
	}
	if msg.todayBadge != (core.WeekBadge{Completed: 0, Total: 2}) {
		t.Errorf("today badge = %+v", msg.todayBadge)
	}
	if len(msg.alerts) != 2 {
		t.Errorf("alerts = %d, want 2", len(msg.alerts))
	}
	if !msg.now.Equal(cliNow) {
		t.Errorf("now = %v", msg.now)
	}
}

func TestLoadDashboard_AlertError(t *testing.T) {
	setupCLI(t)
	AlertEngine = &mockDashboardAlerts{err: errors.New("boom")}

	msg := loadDashboard(core.WindowToday, core.FilterAll)().(dataLoadedMsg)
	if msg.err == nil || !strings.Contains(msg.err.Error(), "loading alerts") {
		t.Errorf("expected alert error, got %v", msg.err)
	}
}

func TestDashboardModel_View(t *testing.T) {
	f := setupCLI(t)
	seedWeek(t, f)

	m := newTestDashboard()
	if got := m.View(); got != "Loading..." {
		t.Errorf("view before size = %q", got)
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = updated.(dashboardModel)
	updated, _ = m.Update(loadDashboard(core.WindowToday, core.FilterAll)())
	m = updated.(dashboardModel)

	view := m.View()
	for _, want := range []string{"window: today", "today 0/2", "week 0/3", "Subtasks (2)", "Launch", "Standup", "Alerts", "Total: 2 alert(s)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	narrow, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 40})
	if !strings.Contains(narrow.(dashboardModel).View(), "Alerts") {
		t.Error("narrow layout should still render alerts")
	}
}

func TestDashboardModel_ViewError(t *testing.T) {
	m := newTestDashboard()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(dashboardModel)
	updated, _ = m.Update(dataLoadedMsg{window: core.WindowToday, filter: core.FilterAll, err: errors.New("store unreadable")})
	m = updated.(dashboardModel)

	if !strings.Contains(m.View(), "Error: store unreadable") {
		t.Errorf("view should show the error:\n%s", m.View())
	}
}

func TestDashboardCmd_NilTaskManager(t *testing.T) {
	orig := TaskMgr
	defer func() { TaskMgr = orig }()
	TaskMgr = nil

	if err := dashboardCmd.RunE(dashboardCmd, nil); err == nil {
		t.Fatal("expected error when TaskMgr is nil")
	}
}
