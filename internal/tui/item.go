package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"aria2tm/internal/common"
	"aria2tm/internal/engine"
)

func statusStyle(s common.Status) lipgloss.Style {
	switch s {
	case common.StatusDownloading:
		return statusStyleDownloading
	case common.StatusPaused:
		return statusStylePaused
	case common.StatusStopped:
		return statusStyleStopped
	case common.StatusCompleted:
		return statusStyleCompleted
	case common.StatusError:
		return statusStyleError
	default:
		return statusStyleWaiting
	}
}

func statusLabel(s common.Status, spinner string) string {
	label := s.String()
	if s == common.StatusDownloading && spinner != "" {
		label = spinner + " " + label
	}

	return statusStyle(s).Render(label)
}

func renderTaskItem(t engine.Summary, width int, spinner string) string {
	url := t.URL
	maxURL := width - 28
	if maxURL > 8 && len(url) > maxURL {
		url = url[:maxURL-3] + "..."
	}

	label := statusStyle(t.Status).Render(fmt.Sprintf("%-12s", t.Status.String()))
	if t.Status == common.StatusDownloading && spinner != "" {
		label = spinner + " " + label
	}

	return fmt.Sprintf("%s %3d%%  %s", label, t.Progress, url)
}
