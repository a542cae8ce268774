// Package task owns one aria2c child process per task: spawning, the
// background output reader, and the lifecycle state machine.
package task

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"aria2tm/internal/aria2"
	"aria2tm/internal/common"
	"aria2tm/internal/logger"
)

const (
	defaultLogCap    = 2000
	defaultTermGrace = 10 * time.Second

	logTimeFormat = "2006-01-02 15:04:05"
)

// Task represents a single requested transfer with its own process, state and log.
// Its progress fields are written by the background reader and read through
// Snapshot; lifecycle methods serialize on the task mutex.
type Task struct {
	ID     uuid.UUID
	Config *common.TaskConfig

	Status common.Status // accessed atomically via GetStatus/SetStatus

	mu   sync.RWMutex
	cmd  *exec.Cmd
	done chan struct{} // closed by the reader once process exit is observed

	gid         string
	progress    int
	haveBytes   int64
	totalBytes  int64
	speed       string
	eta         string
	connections int

	logLines []string
	logCap   int

	running   atomic.Bool
	stopFlag  atomic.Bool
	spawns    atomic.Int32
	termGrace time.Duration
}

// Snapshot is a value copy of a task's observable state.
type Snapshot struct {
	ID          uuid.UUID
	URL         string
	Status      common.Status
	GID         string
	Progress    int
	HaveBytes   int64
	TotalBytes  int64 // 0 while the total length is unknown
	Speed       string
	ETA         string
	Connections int
	Config      common.TaskConfig
}

// New creates a task in the Waiting state. logCap bounds the in-memory log
// ring; values <= 0 select the default.
func New(cfg *common.TaskConfig, logCap int) *Task {
	if logCap <= 0 {
		logCap = defaultLogCap
	}

	return &Task{
		ID:        uuid.New(),
		Config:    cfg,
		Status:    common.StatusWaiting,
		logCap:    logCap,
		termGrace: defaultTermGrace,
	}
}

// SetStatus sets the Status of the task.
func (t *Task) SetStatus(status common.Status) {
	atomic.StoreInt32((*int32)(&t.Status), int32(status))
}

// GetStatus returns the current Status of the task.
func (t *Task) GetStatus() common.Status {
	return common.Status(atomic.LoadInt32((*int32)(&t.Status)))
}

// Start spawns the aria2c process and launches the background reader.
// Calling Start while a process is alive is a no-op beyond a log line.
// All failures are reflected in the status and log, never returned.
func (t *Task) Start(bin string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running.Load() {
		t.appendLogLocked("Task is already in progress")
		return
	}

	args, err := aria2.BuildCommand(bin, t.Config)
	if err != nil {
		logger.Errorf("Task %s: %v", t.ID, err)
		t.appendLogLocked(fmt.Sprintf("Failed to start: %v", err))
		t.SetStatus(common.StatusError)

		return
	}

	t.appendLogLocked("Start command: " + strings.Join(args, " "))

	cmd := exec.Command(args[0], args[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.appendLogLocked(fmt.Sprintf("Failed to start: %v", err))
		t.SetStatus(common.StatusError)

		return
	}
	// Merge stderr into the stdout pipe; the progress markers can appear on either.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		logger.Errorf("Task %s failed to spawn %s: %v", t.ID, args[0], err)
		t.appendLogLocked(fmt.Sprintf("Failed to start: %v", err))
		t.SetStatus(common.StatusError)

		return
	}

	t.cmd = cmd
	t.done = make(chan struct{})
	t.stopFlag.Store(false)
	t.running.Store(true)
	t.spawns.Add(1)
	t.SetStatus(common.StatusDownloading)

	logger.Infof("Task %s started pid %d", t.ID, cmd.Process.Pid)

	go t.readOutput(cmd, stdout, t.done)
}

// Pause terminates the running process but keeps the partial file on disk.
// It does nothing when no process is alive.
func (t *Task) Pause() {
	if t.terminate() {
		t.appendLog("Download paused")
		t.SetStatus(common.StatusPaused)
	}
}

// Stop terminates the process like Pause but always leaves the task Stopped,
// whether or not a process was alive.
func (t *Task) Stop() {
	if t.terminate() {
		t.appendLog("Download stopped")
	}

	t.SetStatus(common.StatusStopped)
}

// Resume restarts the download with the continue flag forced on, relying on
// aria2c's own partial-file continuation. It refuses for completed tasks and
// while a process is alive.
func (t *Task) Resume(bin string) {
	if t.GetStatus() == common.StatusCompleted {
		t.appendLog("Task already completed, no need to resume")
		return
	}

	if t.running.Load() {
		t.appendLog("Task is still running, cannot resume")
		return
	}

	t.appendLog("Resuming download (resume broken download)")

	t.mu.Lock()
	t.Config.Resume = true
	t.mu.Unlock()

	t.Start(bin)
}

// terminate asks a live process to exit gracefully and raises the stop flag.
// If the process ignores the request past the grace period it is killed.
// Returns false when no process was alive.
func (t *Task) terminate() bool {
	t.mu.RLock()
	cmd, done := t.cmd, t.done
	t.mu.RUnlock()

	if cmd == nil || !t.running.Load() {
		return false
	}

	t.stopFlag.Store(true)

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.appendLog(fmt.Sprintf("Failed to terminate: %v", err))
		return false
	}

	grace := t.termGrace

	go func() {
		select {
		case <-done:
		case <-time.After(grace):
			_ = cmd.Process.Kill()
			t.appendLog("Process ignored termination request, killed")
			logger.Warnf("Task %s force-killed after %v", t.ID, grace)
		}
	}()

	return true
}

// readOutput drains the merged output stream line by line until it is
// exhausted or the stop flag is raised, then waits for process exit and
// classifies the exit code unless a lifecycle operation already decided
// the final status.
func (t *Task) readOutput(cmd *exec.Cmd, out io.Reader, done chan struct{}) {
	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if t.stopFlag.Load() {
			break
		}

		line := scanner.Text()
		t.appendLog(line)
		t.applyLine(line)
	}

	err := cmd.Wait()
	t.running.Store(false)
	close(done)

	if t.stopFlag.Load() {
		logger.Debugf("Task %s reader exiting after stop request", t.ID)
		return
	}

	if err == nil {
		t.setCompleted()
		t.appendLog("Download completed")
		logger.Infof("Task %s completed", t.ID)

		return
	}

	code := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}

	t.SetStatus(common.StatusError)
	t.appendLog(fmt.Sprintf("Download error, exit code: %d", code))
	logger.Errorf("Task %s exited with code %d", t.ID, code)
}

// applyLine routes one output line through the progress parser. Parse
// failures are logged and leave the progress fields at their previous
// values; they never fail the task.
func (t *Task) applyLine(line string) {
	update, err := aria2.ParseProgress(line)
	if err != nil {
		t.appendLog(fmt.Sprintf("Failed to parse progress: %v", err))
		logger.Debugf("Task %s: %v", t.ID, err)
	} else if update != nil {
		t.mu.Lock()
		t.gid = update.GID
		t.haveBytes = update.Have
		t.totalBytes = update.Total
		t.progress = update.Percent
		t.connections = update.Connections
		t.speed = update.Speed
		t.eta = update.ETA
		t.mu.Unlock()
	}

	// Some aria2c output signals completion without a structured marker.
	if aria2.IsCompletionLine(line) {
		t.setCompleted()
	}
}

func (t *Task) setCompleted() {
	t.SetStatus(common.StatusCompleted)

	t.mu.Lock()
	t.progress = 100
	t.mu.Unlock()
}

// Snapshot returns a value copy of the observable state, so callers never
// hold references into the task's mutable fields.
func (t *Task) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Snapshot{
		ID:          t.ID,
		URL:         t.Config.URL,
		Status:      t.GetStatus(),
		GID:         t.gid,
		Progress:    t.progress,
		HaveBytes:   t.haveBytes,
		TotalBytes:  t.totalBytes,
		Speed:       t.speed,
		ETA:         t.eta,
		Connections: t.connections,
		Config:      *t.Config.Clone(),
	}
}

// Log returns up to maxLines of the newest log entries, oldest first.
// maxLines <= 0 returns everything currently retained.
func (t *Task) Log(maxLines int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lines := t.logLines
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	return append([]string(nil), lines...)
}

func (t *Task) appendLog(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.appendLogLocked(message)
}

func (t *Task) appendLogLocked(message string) {
	entry := fmt.Sprintf("[%s] %s", time.Now().Format(logTimeFormat), message)

	if len(t.logLines) >= t.logCap {
		t.logLines = append(t.logLines[1:], entry)
	} else {
		t.logLines = append(t.logLines, entry)
	}
}
