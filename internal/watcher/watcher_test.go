package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitTimeout = 3 * time.Second
	waitTick    = 20 * time.Millisecond
)

func countingWatcher(t *testing.T, path string, debounce time.Duration) (*Watcher, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	w, err := New(path, func() error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	w.WithDebounce(debounce)

	require.NoError(t, w.Start())
	t.Cleanup(func() { w.Stop() })
	return w, &calls
}

func TestNew_RequiresCallback(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "brewfile.json"), nil)
	assert.Error(t, err)
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brewfile.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, calls := countingWatcher(t, path, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"version":"`+strconv.Itoa(i)+`"}`), 0644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, waitTimeout, waitTick)
	time.Sleep(300 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load(), "one burst of writes should fire once")
}

func TestWatcher_SeesRenameOver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brewfile.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, calls := countingWatcher(t, path, 20*time.Millisecond)

	tmp := filepath.Join(dir, "brewfile.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"version":"2"}`), 0644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, waitTimeout, waitTick)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	_, calls := countingWatcher(t, filepath.Join(dir, "brewfile.json"), 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, calls.Load(), "unrelated file triggered a regeneration")
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "brewfile.json"), func() error { return nil })
	require.NoError(t, err)
	require.NoError(t, w.Start())

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatcher_RunReturnsOnCancel(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "brewfile.json"), func() error { return nil })
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestIsDaemonRunning(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		write   bool
		want    bool
	}{
		{name: "no pid file", want: false},
		{name: "current process", content: strconv.Itoa(os.Getpid()) + "\n", write: true, want: true},
		{name: "garbage", content: "not-a-pid", write: true, want: false},
		{name: "dead process", content: "999999\n", write: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pidFile := filepath.Join(dir, tt.name+".pid")
			if tt.write {
				require.NoError(t, os.WriteFile(pidFile, []byte(tt.content), 0644))
			}
			got, err := IsDaemonRunning(pidFile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStopDaemon_NoPIDFile(t *testing.T) {
	assert.Error(t, StopDaemon(filepath.Join(t.TempDir(), "missing.pid")))
}
