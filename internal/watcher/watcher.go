// Package watcher reports debounced changes to files in a project's source
// directory.
package watcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/atelier/internal/log"
)

// Watcher monitors a directory for writes to a set of files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	files     []string
	debounce  time.Duration
	onChange  chan string
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	// Dir is the directory to watch.
	Dir string
	// Files are the base names that trigger a change. Empty means any file.
	Files       []string
	DebounceDur time.Duration
}

// DefaultConfig watches file for changes with a 300ms debounce.
func DefaultConfig(file string) Config {
	return Config{
		Dir:         filepath.Dir(file),
		Files:       []string{filepath.Base(file)},
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		files:     cfg.Files,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan string, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. The returned channel receives the base name of the
// last changed file once writes have settled for the debounce period.
func (w *Watcher) Start() (<-chan string, error) {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}
	log.Debug(log.CatWatcher, "Watching", "dir", w.dir, "files", w.files)

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		changed string
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}

			changed = filepath.Base(event.Name)
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
			timerC = timer.C

		case <-timerC:
			timerC = nil
			log.Debug(log.CatWatcher, "Change detected", "file", changed)
			// Drop if the previous change has not been picked up yet.
			select {
			case w.onChange <- changed:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watch error", err, "dir", w.dir)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent reports whether event should trigger a change.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	// Editors often replace files instead of writing in place.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	if len(w.files) == 0 {
		return true
	}
	return slices.Contains(w.files, filepath.Base(event.Name))
}
