// Package engine owns the collection of tasks and is the only interface the
// presentation layer talks to. Lifecycle verbs are dispatched fire-and-forget
// so the control context never blocks on a child process.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"aria2tm/internal/common"
	"aria2tm/internal/config"
	"aria2tm/internal/logger"
	"aria2tm/internal/task"
)

var (
	// ErrTaskNotFound is returned when a task cannot be found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskActive is returned when removing a task that is still downloading.
	ErrTaskActive = errors.New("task is downloading, stop it first")

	// ErrInvalidURL is returned for empty URLs.
	ErrInvalidURL = errors.New("invalid URL")
)

// Summary is one row of the task list.
type Summary struct {
	ID       uuid.UUID
	URL      string
	Status   common.Status
	Progress int
}

// Details is the full snapshot handed to the presentation layer.
type Details = task.Snapshot

type Engine struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*task.Task
	order []uuid.UUID

	cfg *config.Config
	wg  sync.WaitGroup
}

// New creates an Engine with the given application config.
func New(cfg *config.Config) *Engine {
	return &Engine{
		tasks: make(map[uuid.UUID]*task.Task),
		cfg:   cfg,
	}
}

// runTask runs a function in a goroutine tracked by the WaitGroup.
func (e *Engine) runTask(fn func()) {
	e.wg.Add(1)

	go func() {
		defer e.wg.Done()
		fn()
	}()
}

// Add registers a new task in the Waiting state and returns its identity.
// Missing per-task settings are filled from the application defaults.
func (e *Engine) Add(cfg *common.TaskConfig) (uuid.UUID, error) {
	if cfg == nil || cfg.URL == "" {
		logger.Errorf("Cannot add task with empty URL")
		return uuid.Nil, ErrInvalidURL
	}

	c := cfg.Clone()

	if c.Dir == "" {
		c.Dir = e.cfg.DownloadDir
	}
	if c.Split <= 0 {
		c.Split = e.cfg.Split
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = e.cfg.MaxConnections
	}
	if c.MaxTries <= 0 {
		c.MaxTries = e.cfg.MaxTries
	}
	if c.RetryWait <= 0 {
		c.RetryWait = e.cfg.RetryWait
	}
	if c.FileAllocation == "" {
		c.FileAllocation = e.cfg.FileAllocation
	}

	t := task.New(c, e.cfg.LogLines)

	e.mu.Lock()
	e.tasks[t.ID] = t
	e.order = append(e.order, t.ID)
	e.mu.Unlock()

	logger.Infof("Task %s added for URL %s", t.ID, c.URL)

	return t.ID, nil
}

// get retrieves a task by ID.
func (e *Engine) get(id uuid.UUID) (*task.Task, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}

	return t, nil
}

// List returns one summary per task in insertion order.
func (e *Engine) List() []Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	summaries := make([]Summary, 0, len(e.order))
	for _, id := range e.order {
		snap := e.tasks[id].Snapshot()
		summaries = append(summaries, Summary{
			ID:       snap.ID,
			URL:      snap.URL,
			Status:   snap.Status,
			Progress: snap.Progress,
		})
	}

	return summaries
}

// Details returns a full runtime-state snapshot plus config for one task.
func (e *Engine) Details(id uuid.UUID) (Details, error) {
	t, err := e.get(id)
	if err != nil {
		return Details{}, err
	}

	return t.Snapshot(), nil
}

// Log returns up to maxLines of the newest log entries for one task.
func (e *Engine) Log(id uuid.UUID, maxLines int) ([]string, error) {
	t, err := e.get(id)
	if err != nil {
		return nil, err
	}

	return t.Log(maxLines), nil
}

// Start begins downloading a task.
func (e *Engine) Start(id uuid.UUID) error {
	t, err := e.get(id)
	if err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}

	logger.Infof("Starting task %s", id)
	e.runTask(func() { t.Start(e.cfg.Aria2Path) })

	return nil
}

// Pause pauses a downloading task; the partial file stays on disk.
func (e *Engine) Pause(id uuid.UUID) error {
	t, err := e.get(id)
	if err != nil {
		return fmt.Errorf("failed to pause task: %w", err)
	}

	logger.Infof("Pausing task %s", id)
	e.runTask(t.Pause)

	return nil
}

// Resume restarts a paused or stopped task with continuation forced on.
func (e *Engine) Resume(id uuid.UUID) error {
	t, err := e.get(id)
	if err != nil {
		return fmt.Errorf("failed to resume task: %w", err)
	}

	logger.Infof("Resuming task %s", id)
	e.runTask(func() { t.Resume(e.cfg.Aria2Path) })

	return nil
}

// Stop stops a task; its final status is always Stopped.
func (e *Engine) Stop(id uuid.UUID) error {
	t, err := e.get(id)
	if err != nil {
		return fmt.Errorf("failed to stop task: %w", err)
	}

	logger.Infof("Stopping task %s", id)
	e.runTask(t.Stop)

	return nil
}

// Remove deletes a task and invalidates its identity. Removal is refused
// while the task is downloading.
func (e *Engine) Remove(id uuid.UUID) error {
	t, err := e.get(id)
	if err != nil {
		return fmt.Errorf("failed to remove task: %w", err)
	}

	if t.GetStatus() == common.StatusDownloading {
		logger.Warnf("Refusing to remove downloading task %s", id)
		return ErrTaskActive
	}

	e.mu.Lock()
	delete(e.tasks, id)

	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.mu.Unlock()

	logger.Infof("Task %s removed", id)

	return nil
}

// Shutdown stops every downloading task and waits for the dispatched
// lifecycle operations to finish, bounded by a grace period.
func (e *Engine) Shutdown(timeout time.Duration) {
	logger.Infof("Starting engine shutdown...")

	for _, s := range e.List() {
		if s.Status == common.StatusDownloading {
			if err := e.Stop(s.ID); err != nil {
				logger.Errorf("Error stopping task %s during shutdown: %v", s.ID, err)
			}
		}
	}

	waitChan := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(waitChan)
	}()

	select {
	case <-waitChan:
		logger.Infof("All tasks stopped gracefully")
	case <-time.After(timeout):
		logger.Warnf("Shutdown timed out, some operations may not have completed")
	}
}
