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

func tempFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))
	return path
}

func waitChange(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case _, ok := <-ch:
		require.True(t, ok, "channel closed before change")
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_ReportsWrite(t *testing.T) {
	path := tempFile(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := New(path, WithDebounce(20*time.Millisecond)).Changes(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("second"), 0o644))
	waitChange(t, ch)
}

func TestWatcher_ReportsAtomicReplace(t *testing.T) {
	path := tempFile(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := New(path, WithDebounce(20*time.Millisecond)).Changes(ctx)
	require.NoError(t, err)

	tmp := filepath.Join(filepath.Dir(path), ".input.txt.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("replaced"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	waitChange(t, ch)
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	path := tempFile(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := New(path, WithDebounce(150*time.Millisecond)).Changes(ctx)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}
	waitChange(t, ch)

	select {
	case <-ch:
		t.Fatal("burst produced more than one change")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := tempFile(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := New(path, WithDebounce(20*time.Millisecond)).Changes(ctx)
	require.NoError(t, err)

	other := filepath.Join(filepath.Dir(path), "other.txt")
	require.NoError(t, os.WriteFile(other, []byte("noise"), 0o644))

	select {
	case <-ch:
		t.Fatal("change reported for a different file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	path := tempFile(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := New(path).Changes(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatcher_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.txt")).Changes(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatcher_Run(t *testing.T) {
	path := tempFile(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	w := New(path, WithDebounce(20*time.Millisecond))

	go func() {
		done <- w.Run(ctx, func(context.Context) {
			if calls.Add(1) == 1 {
				cancel()
			}
		})
	}()

	// Run sets up the watch asynchronously; keep writing until it notices.
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for calls.Load() == 0 {
		select {
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte(time.Now().String()), 0o644))
		case <-deadline:
			t.Fatal("Run never called fn")
		}
	}

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
