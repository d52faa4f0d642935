// Package watch reports changes to a single file.
//
// The parent directory is watched rather than the file itself so that
// editors which save by writing a temp file and renaming it over the
// original keep triggering events.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events one save produces.
const DefaultDebounce = 200 * time.Millisecond

// pollInterval is used when fsnotify is unavailable.
const pollInterval = time.Second

// Watcher watches one file for modifications.
type Watcher struct {
	path     string
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last event before a change
// is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher for path.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Changes returns a channel that receives once per debounced change to the
// file. The channel is closed when ctx is done.
func (w *Watcher) Changes(ctx context.Context) (<-chan struct{}, error) {
	if _, err := os.Stat(w.path); err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.path, err)
	}

	ch := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Debug("fsnotify unavailable, polling", slog.Any("error", err))
		go w.poll(ctx, ch)
		return ch, nil
	}

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		slog.Debug("watch directory failed, polling", slog.Any("error", err))
		go w.poll(ctx, ch)
		return ch, nil
	}

	go w.watch(ctx, ch, watcher)
	return ch, nil
}

// Run calls fn after every change until ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context)) error {
	changes, err := w.Changes(ctx)
	if err != nil {
		return err
	}
	for range changes {
		fn(ctx)
	}
	return ctx.Err()
}

func (w *Watcher) watch(ctx context.Context, ch chan<- struct{}, watcher *fsnotify.Watcher) {
	defer close(ch)
	defer watcher.Close()

	base := filepath.Base(w.path)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			notify(ch)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", slog.String("path", w.path), slog.Any("error", err))
		}
	}
}

// poll compares size and modification time on a fixed interval.
func (w *Watcher) poll(ctx context.Context, ch chan<- struct{}) {
	defer close(ch)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := stat(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := stat(w.path)
			if cur != last {
				last = cur
				notify(ch)
			}
		}
	}
}

type fileState struct {
	size    int64
	modTime time.Time
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{size: info.Size(), modTime: info.ModTime()}
}

// notify drops the signal if one is already pending.
func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
