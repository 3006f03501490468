package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event signals that the watched preferences file changed on disk.
type Event struct {
	Path string
}

// Watch streams change events for the preferences file at path until ctx is
// cancelled. The parent directory is watched rather than the file itself, so
// atomic tmp + rename rewrites are seen as changes instead of losing the
// watch. Rapid write bursts are coalesced into a single event. Callers should
// drain the channel; events are dropped when the consumer is not ready.
//
// The channel is closed once ctx is done or the watcher fails.
func Watch(ctx context.Context, path string) (<-chan Event, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure preferences directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer watcher.Close()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Drop when the consumer lags; the next reload picks up
				// the current file state anyway.
			}
		}

		throttle := newWriteThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		clean := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Treat watcher errors as a change; a reload resyncs state
				// even when the event could not be classified.
				throttle.Enqueue(Event{Path: clean}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != clean {
					continue
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				throttle.Enqueue(Event{Path: clean}, send)
			}
		}
	}()

	return events, nil
}

// writeThrottle coalesces rapid file events so consumers reload once per
// burst of writes instead of once per write.
type writeThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending *Event
	delay   time.Duration
}

func newWriteThrottle(delay time.Duration) *writeThrottle {
	return &writeThrottle{delay: delay}
}

func (t *writeThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending = &ev
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *writeThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.timer = nil
	t.mu.Unlock()

	if pending != nil {
		send(*pending)
	}
}

func (t *writeThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
