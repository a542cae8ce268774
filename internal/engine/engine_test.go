package engine_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria2tm/internal/common"
	"aria2tm/internal/config"
	"aria2tm/internal/engine"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-aria2c")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	return path
}

func newTestEngine(t *testing.T, bin string) *engine.Engine {
	t.Helper()

	return engine.New(&config.Config{
		Aria2Path:      bin,
		DownloadDir:    t.TempDir(),
		Split:          4,
		MaxTries:       5,
		FileAllocation: "none",
		LogLines:       100,
	})
}

func waitTaskStatus(t *testing.T, e *engine.Engine, id uuid.UUID, want common.Status) {
	t.Helper()

	require.Eventually(t, func() bool {
		d, err := e.Details(id)
		return err == nil && d.Status == want
	}, 5*time.Second, 20*time.Millisecond, "waiting for status %s", want)
}

func TestEngine_AddAndList(t *testing.T) {
	e := newTestEngine(t, "aria2c")

	first, err := e.Add(&common.TaskConfig{URL: "http://example/a.bin"})
	require.NoError(t, err)

	second, err := e.Add(&common.TaskConfig{URL: "http://example/b.bin"})
	require.NoError(t, err)

	list := e.List()
	require.Len(t, list, 2)

	// Insertion order is preserved.
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, second, list[1].ID)
	assert.Equal(t, common.StatusWaiting, list[0].Status)
	assert.Equal(t, 0, list[0].Progress)
}

func TestEngine_AddFillsDefaults(t *testing.T) {
	e := newTestEngine(t, "aria2c")

	id, err := e.Add(&common.TaskConfig{URL: "http://example/a.bin"})
	require.NoError(t, err)

	d, err := e.Details(id)
	require.NoError(t, err)

	assert.Equal(t, 4, d.Config.Split)
	assert.Equal(t, 5, d.Config.MaxTries)
	assert.NotEmpty(t, d.Config.Dir)
}

func TestEngine_AddEmptyURL(t *testing.T) {
	e := newTestEngine(t, "aria2c")

	_, err := e.Add(&common.TaskConfig{})
	assert.ErrorIs(t, err, engine.ErrInvalidURL)

	_, err = e.Add(nil)
	assert.ErrorIs(t, err, engine.ErrInvalidURL)
}

func TestEngine_UnknownIdentity(t *testing.T) {
	e := newTestEngine(t, "aria2c")
	unknown := uuid.New()

	_, err := e.Details(unknown)
	assert.ErrorIs(t, err, engine.ErrTaskNotFound)

	_, err = e.Log(unknown, 10)
	assert.ErrorIs(t, err, engine.ErrTaskNotFound)

	assert.ErrorIs(t, e.Start(unknown), engine.ErrTaskNotFound)
	assert.ErrorIs(t, e.Pause(unknown), engine.ErrTaskNotFound)
	assert.ErrorIs(t, e.Resume(unknown), engine.ErrTaskNotFound)
	assert.ErrorIs(t, e.Stop(unknown), engine.ErrTaskNotFound)
	assert.ErrorIs(t, e.Remove(unknown), engine.ErrTaskNotFound)
}

func TestEngine_RemoveWhileDownloading(t *testing.T) {
	bin := writeScript(t, `exec sleep 5`)
	e := newTestEngine(t, bin)

	id, err := e.Add(&common.TaskConfig{URL: "http://example/file.bin"})
	require.NoError(t, err)

	require.NoError(t, e.Start(id))
	waitTaskStatus(t, e, id, common.StatusDownloading)

	assert.ErrorIs(t, e.Remove(id), engine.ErrTaskActive)

	require.NoError(t, e.Stop(id))
	waitTaskStatus(t, e, id, common.StatusStopped)

	require.NoError(t, e.Remove(id))
	assert.Empty(t, e.List())

	_, err = e.Details(id)
	assert.ErrorIs(t, err, engine.ErrTaskNotFound)
}

func TestEngine_EndToEnd(t *testing.T) {
	bin := writeScript(t, `echo '[#00 5MiB/10MiB(50%) CN:2 DL:2MiB ETA:10s]'
exit 0`)
	e := newTestEngine(t, bin)

	id, err := e.Add(&common.TaskConfig{URL: "http://example/file.bin", Split: 4})
	require.NoError(t, err)

	require.NoError(t, e.Start(id))
	waitTaskStatus(t, e, id, common.StatusCompleted)

	d, err := e.Details(id)
	require.NoError(t, err)
	assert.Equal(t, int64(5*1024*1024), d.HaveBytes)
	assert.Equal(t, int64(10*1024*1024), d.TotalBytes)
	assert.Equal(t, "00", d.GID)

	log, err := e.Log(id, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, log)
}

func TestEngine_Shutdown(t *testing.T) {
	bin := writeScript(t, `exec sleep 5`)
	e := newTestEngine(t, bin)

	id, err := e.Add(&common.TaskConfig{URL: "http://example/file.bin"})
	require.NoError(t, err)

	require.NoError(t, e.Start(id))
	waitTaskStatus(t, e, id, common.StatusDownloading)

	e.Shutdown(5 * time.Second)

	d, err := e.Details(id)
	require.NoError(t, err)
	assert.Equal(t, common.StatusStopped, d.Status)
}
