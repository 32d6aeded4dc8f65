package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func startWatcher(t *testing.T, files []string, run RunFunc) context.CancelFunc {
	t.Helper()
	w, err := New(files, run, WithDebounce(testDebounce))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// give the watcher time to register its directories
	time.Sleep(100 * time.Millisecond)
	return cancel
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewRejectsEmptyInput(t *testing.T) {
	_, err := New(nil, func(context.Context) error { return nil })
	require.Error(t, err)

	_, err = New([]string{"package.json"}, nil)
	require.Error(t, err)
}

func TestBurstOfChangesRunsOnce(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tsconfig.json")
	writeFile(t, cfg, "{}")

	var runs atomic.Int32
	startWatcher(t, []string{cfg}, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	for i := range 5 {
		writeFile(t, cfg, `{"v":`+string(rune('0'+i))+`}`)
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(4 * testDebounce)
	assert.Equal(t, int32(1), runs.Load())
}

func TestUnrelatedFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "package.json")
	writeFile(t, pkg, "{}")

	var runs atomic.Int32
	startWatcher(t, []string{pkg}, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	writeFile(t, filepath.Join(dir, "README.md"), "hello")
	assert.Never(t, func() bool { return runs.Load() > 0 }, 6*testDebounce, 10*time.Millisecond)
}

func TestRunsNeverOverlap(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tsconfig.json")
	pkg := filepath.Join(dir, "package.json")
	writeFile(t, cfg, "{}")
	writeFile(t, pkg, "{}")

	var runs, active, maxActive atomic.Int32
	started := make(chan struct{}, 4)
	startWatcher(t, []string{cfg, pkg}, func(context.Context) error {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		started <- struct{}{}
		time.Sleep(200 * time.Millisecond)
		active.Add(-1)
		runs.Add(1)
		return nil
	})

	writeFile(t, cfg, `{"a":1}`)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first rebuild did not start")
	}

	// changes during a running build coalesce into one follow-up run
	writeFile(t, pkg, `{"b":1}`)
	writeFile(t, cfg, `{"a":2}`)

	require.Eventually(t, func() bool { return runs.Load() == 2 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(4 * testDebounce)
	assert.Equal(t, int32(2), runs.Load())
	assert.Equal(t, int32(1), maxActive.Load())
}

func TestFailedRunKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "tsconfig.json")
	writeFile(t, cfg, "{}")

	var runs atomic.Int32
	startWatcher(t, []string{cfg}, func(context.Context) error {
		runs.Add(1)
		return assert.AnError
	})

	writeFile(t, cfg, `{"a":1}`)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, cfg, `{"a":2}`)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}
