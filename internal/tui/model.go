package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"aria2tm/internal/common"
	"aria2tm/internal/engine"
)

// view represents the different screens in the TUI
type view int

const (
	taskListView view = iota
	addTaskView
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Start   key.Binding
	Pause   key.Binding
	Resume  key.Binding
	Stop    key.Binding
	Remove  key.Binding
	Confirm key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Start, k.Pause, k.Resume, k.Stop, k.Remove, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add},
		{k.Start, k.Pause, k.Resume, k.Stop, k.Remove},
		{k.Confirm, k.Back, k.Quit},
	}
}

// Model represents the main TUI state
type Model struct {
	engine *engine.Engine

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	urlInput textinput.Model
	logView  viewport.Model
	bar      progress.Model

	tasks    []engine.Summary
	details  *engine.Details
	logLines []string
	sys      sysStatsMsg

	activeView  view
	selectedIdx int
	width       int
	height      int
	message     string
	messageErr  bool
	quitting    bool
}

// NewModel creates a new TUI model
func NewModel(eng *engine.Engine) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(gruvboxGreen)

	input := textinput.New()
	input.Placeholder = "Enter URL to download"
	input.Width = 60

	bar := progress.New(progress.WithDefaultGradient())

	return Model{
		engine:     eng,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    s,
		urlInput:   input,
		logView:    viewport.New(80, 10),
		bar:        bar,
		activeView: taskListView,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.pollTasks(),
		m.spinner.Tick,
		tick(),
		sampleSysStats,
		sysTick(),
	)
}

func (m Model) pollTasks() tea.Cmd {
	return func() tea.Msg {
		return tasksMsg(m.engine.List())
	}
}

func (m Model) pollDetails(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		details, err := m.engine.Details(id)
		if err != nil {
			// The task was removed between polls; the list refresh handles it.
			return nil
		}

		log, err := m.engine.Log(id, logTailLines)
		if err != nil {
			return nil
		}

		return detailsMsg{details: details, log: log}
	}
}

func (m Model) selectedID() (uuid.UUID, bool) {
	if len(m.tasks) == 0 || m.selectedIdx >= len(m.tasks) {
		return uuid.Nil, false
	}

	return m.tasks[m.selectedIdx].ID, true
}

func dispatch(fn func(uuid.UUID) error, id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		if err := fn(id); err != nil {
			return errMsg{err: err}
		}

		return nil
	}
}

func addTask(eng *engine.Engine, url string) tea.Cmd {
	return func() tea.Msg {
		if _, err := eng.Add(&common.TaskConfig{URL: url}); err != nil {
			return errMsg{err: err}
		}

		return taskAddedMsg{}
	}
}

func clearMessageAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

// Update handles input and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit) && m.activeView == taskListView:
			m.quitting = true
			return m, tea.Quit

		case m.activeView == taskListView:
			return m.updateTaskListView(msg)

		case m.activeView == addTaskView:
			return m.updateAddTaskView(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-8, 70)
		m.logView.Width = msg.Width - 6
		m.logView.Height = max(5, msg.Height/3)

		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.pollTasks(), tick()}
		if id, ok := m.selectedID(); ok {
			cmds = append(cmds, m.pollDetails(id))
		}

		return m, tea.Batch(cmds...)

	case sysTickMsg:
		return m, tea.Batch(sampleSysStats, sysTick())

	case sysStatsMsg:
		m.sys = msg
		return m, nil

	case tasksMsg:
		m.tasks = msg
		if m.selectedIdx >= len(m.tasks) {
			m.selectedIdx = max(0, len(m.tasks)-1)
		}
		if len(m.tasks) == 0 {
			m.details = nil
			m.logLines = nil
		}

		return m, nil

	case detailsMsg:
		m.details = &msg.details
		m.logLines = msg.log
		m.logView.SetContent(strings.Join(m.logLines, "\n"))
		m.logView.GotoBottom()

		return m, nil

	case taskAddedMsg:
		m.activeView = taskListView
		m.message = "Task added"
		m.messageErr = false

		return m, tea.Batch(m.pollTasks(), clearMessageAfter(3*time.Second))

	case errMsg:
		m.message = msg.err.Error()
		m.messageErr = true

		return m, clearMessageAfter(5*time.Second)

	case clearMessageMsg:
		m.message = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m Model) updateTaskListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selectedIdx > 0 {
			m.selectedIdx--
			if id, ok := m.selectedID(); ok {
				return m, m.pollDetails(id)
			}
		}

		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selectedIdx < len(m.tasks)-1 {
			m.selectedIdx++
			if id, ok := m.selectedID(); ok {
				return m, m.pollDetails(id)
			}
		}

		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.activeView = addTaskView
		m.urlInput.SetValue("")
		m.urlInput.Focus()

		return m, nil

	case key.Matches(msg, m.keys.Start):
		if id, ok := m.selectedID(); ok {
			return m, dispatch(m.engine.Start, id)
		}

	case key.Matches(msg, m.keys.Pause):
		if id, ok := m.selectedID(); ok {
			return m, dispatch(m.engine.Pause, id)
		}

	case key.Matches(msg, m.keys.Resume):
		if id, ok := m.selectedID(); ok {
			return m, dispatch(m.engine.Resume, id)
		}

	case key.Matches(msg, m.keys.Stop):
		if id, ok := m.selectedID(); ok {
			return m, dispatch(m.engine.Stop, id)
		}

	case key.Matches(msg, m.keys.Remove):
		if id, ok := m.selectedID(); ok {
			return m, tea.Sequence(dispatch(m.engine.Remove, id), m.pollTasks())
		}
	}

	return m, nil
}

func (m Model) updateAddTaskView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.activeView = taskListView
		m.urlInput.Blur()

		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		url := strings.TrimSpace(m.urlInput.Value())
		m.urlInput.Blur()

		if url == "" {
			m.activeView = taskListView
			return m, nil
		}

		return m, addTask(m.engine, url)

	default:
		var cmd tea.Cmd
		m.urlInput, cmd = m.urlInput.Update(msg)

		return m, cmd
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	s.WriteString(headerStyle.Render("aria2 Task Manager"))
	s.WriteString("\n\n")

	if m.message != "" {
		style := messageStyle
		if m.messageErr {
			style = errorStyle
		}
		s.WriteString(style.Render(m.message))
		s.WriteString("\n\n")
	}

	switch m.activeView {
	case addTaskView:
		s.WriteString(formLabelStyle.Render("Download URL:"))
		s.WriteString("\n")
		s.WriteString(m.urlInput.View())
		s.WriteString("\n\n")
	default:
		s.WriteString(m.renderTaskList())
	}

	s.WriteString(m.help.View(m.keys))
	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m Model) renderTaskList() string {
	var s strings.Builder

	if len(m.tasks) == 0 {
		s.WriteString(taskItemStyle.Render("No tasks. Press 'a' to add a download."))
		s.WriteString("\n\n")

		return s.String()
	}

	width := min(max(m.width-4, 40), 100)

	for i, t := range m.tasks {
		item := renderTaskItem(t, width, m.spinner.View())
		if i == m.selectedIdx {
			s.WriteString(selectedTaskStyle.Width(width).Render(item))
		} else {
			s.WriteString(taskItemStyle.Width(width).Render(item))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")

	if m.details != nil {
		s.WriteString(m.renderDetails(width))
		s.WriteString("\n")
		s.WriteString(m.logView.View())
		s.WriteString("\n")
	}

	return s.String()
}

func (m Model) renderDetails(width int) string {
	d := m.details

	var s strings.Builder

	line := func(label, value string) {
		s.WriteString(detailLabelStyle.Render(label))
		s.WriteString(value)
		s.WriteString("\n")
	}

	line("URL", d.URL)
	line("Status", statusLabel(d.Status, ""))
	if d.GID != "" {
		line("GID", d.GID)
	}
	line("Size", fmt.Sprintf("%s / %s", humanize.IBytes(uint64(d.HaveBytes)), totalLabel(d.TotalBytes)))
	line("Speed", speedLabel(d))
	line("Splits", fmt.Sprintf("%d (CN:%d)", d.Config.Split, d.Connections))
	s.WriteString(m.bar.ViewAs(float64(d.Progress) / 100))

	return detailPaneStyle.Width(width).Render(s.String())
}

func (m Model) renderFooter() string {
	footer := fmt.Sprintf("RAM %s / %s  ·  CPU %.1f%%",
		humanize.IBytes(m.sys.memUsed),
		humanize.IBytes(m.sys.memTotal),
		m.sys.cpuPercent,
	)

	return footerStyle.Render(footer)
}

func totalLabel(total int64) string {
	if total <= 0 {
		return "unknown"
	}

	return humanize.IBytes(uint64(total))
}

func speedLabel(d *engine.Details) string {
	if d.Status != common.StatusDownloading || d.Speed == "" {
		return "--"
	}

	return d.Speed + "/s  ETA " + d.ETA
}
