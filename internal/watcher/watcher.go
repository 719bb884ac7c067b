// Package watcher reports changes to the snippet, variables and config
// files, coalescing bursts of writes.
package watcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/superle3/snippet-leaf/internal/log"
)

// Event lists the watched files that changed during one debounce window.
type Event struct {
	Paths []string
}

// Has reports whether path is among the changed files.
func (e Event) Has(path string) bool {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return slices.Contains(e.Paths, path)
}

// Watcher monitors a set of files and sends debounced notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     []string
	debounce  time.Duration
	onChange  chan Event
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	// Files are the watched files. Their directories are watched so that
	// editors replacing a file by rename are noticed. Empty entries are
	// ignored.
	Files       []string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(files ...string) Config {
	return Config{
		Files:       files,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a new file watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	var files []string
	for _, f := range cfg.Files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		if !slices.Contains(files, abs) {
			files = append(files, abs)
		}
	}

	return &Watcher{
		fsWatcher: fsw,
		files:     files,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan Event, 1),
		done:      make(chan struct{}),
	}, nil
}

// Files returns the absolute paths of the watched files.
func (w *Watcher) Files() []string { return w.files }

// Start begins watching the directories of the files.
// Returns a channel that receives the changed files after each burst.
func (w *Watcher) Start() (<-chan Event, error) {
	var dirs []string
	for _, f := range w.files {
		dir := filepath.Dir(f)
		if slices.Contains(dirs, dir) {
			continue
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
		dirs = append(dirs, dir)
	}
	log.Debug(log.CatWatcher, "watching files", "files", len(w.files), "dirs", len(dirs))

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		changed []string
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			path, relevant := w.relevantPath(event)
			if !relevant {
				continue
			}
			if !slices.Contains(changed, path) {
				changed = append(changed, path)
			}

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if len(changed) > 0 {
				ev := Event{Paths: changed}
				changed = nil
				select {
				case w.onChange <- ev:
				default:
					// The previous event is still unread; it triggers the
					// same reload.
					log.Debug(log.CatWatcher, "dropped change event", "files", len(ev.Paths))
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevantPath returns the watched file an event refers to.
func (w *Watcher) relevantPath(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return "", false
	}
	path := filepath.Clean(event.Name)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, slices.Contains(w.files, path)
}
