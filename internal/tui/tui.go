package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"aria2tm/internal/engine"
)

// Message types for the TUI
type (
	// tasksMsg carries a fresh task-list snapshot.
	tasksMsg []engine.Summary

	// detailsMsg carries the selected task's snapshot and log tail.
	detailsMsg struct {
		details engine.Details
		log     []string
	}

	// taskAddedMsg is sent when a new task was registered.
	taskAddedMsg struct{}

	// sysStatsMsg carries a system resource sample for the footer.
	sysStatsMsg struct {
		memUsed    uint64
		memTotal   uint64
		cpuPercent float64
	}

	// errMsg is sent when an engine operation is rejected.
	errMsg struct {
		err error
	}

	// clearMessageMsg hides the notification line.
	clearMessageMsg struct{}

	tickMsg    time.Time
	sysTickMsg time.Time
)

const (
	pollInterval     = time.Second
	sysStatsInterval = 3 * time.Second
	logTailLines     = 100
)

// Run starts the TUI application. It blocks until the user quits.
func Run(eng *engine.Engine) error {
	p := tea.NewProgram(NewModel(eng), tea.WithAltScreen())

	_, err := p.Run()

	return err
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func sysTick() tea.Cmd {
	return tea.Tick(sysStatsInterval, func(t time.Time) tea.Msg {
		return sysTickMsg(t)
	})
}

// sampleSysStats gathers the memory and CPU figures shown in the footer.
// Failures just leave the footer stale.
func sampleSysStats() tea.Msg {
	stats := sysStatsMsg{}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.memUsed = vm.Used
		stats.memTotal = vm.Total
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		stats.cpuPercent = pct[0]
	}

	return stats
}
