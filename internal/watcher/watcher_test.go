package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zjrosen/anpconf/internal/watcher"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeJob(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.yaml")
	writeJob(t, jobPath, "kind: module")

	w, err := watcher.New(watcher.Config{
		Paths:       []string{jobPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		writeJob(t, jobPath, fmt.Sprintf("kind: module\nname: v%d\n", i))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.yaml")
	otherPath := filepath.Join(dir, "notes.txt")
	writeJob(t, jobPath, "kind: module")
	// Pre-create the other file so writes to it are just Write events
	writeJob(t, otherPath, "initial")

	w, err := watcher.New(watcher.Config{
		Paths:       []string{jobPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	writeJob(t, otherPath, "other content")

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_ReplacedOnSave(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.yaml")
	writeJob(t, jobPath, "kind: module")

	w, err := watcher.New(watcher.Config{
		Paths:       []string{jobPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	tmp := filepath.Join(dir, ".job.yaml.swp")
	writeJob(t, tmp, "kind: ntuple")
	require.NoError(t, os.Rename(tmp, jobPath))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for replaced job file")
	}
}

func TestWatcher_MultipleFiles(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	jobA := filepath.Join(dirA, "a.yaml")
	jobB := filepath.Join(dirB, "b.yaml")
	writeJob(t, jobA, "a")
	writeJob(t, jobB, "b")

	w, err := watcher.New(watcher.Config{
		Paths:       []string{jobA, jobB},
		DebounceDur: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	writeJob(t, jobB, "b2")
	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for second file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.yaml")
	writeJob(t, jobPath, "kind: module")

	w, err := watcher.New(watcher.Config{
		Paths:       []string{jobPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Stop should not hang or panic
	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.Error(t, err)

	w, err := watcher.New(watcher.Config{Paths: []string{filepath.Join(t.TempDir(), "missing", "job.yaml")}})
	require.NoError(t, err)
	_, err = w.Start()
	require.Error(t, err)
	require.NoError(t, w.Stop())
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/jobs/a.yaml", "/jobs/b.yaml")

	assert.Equal(t, []string{"/jobs/a.yaml", "/jobs/b.yaml"}, cfg.Paths)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDur)
}
