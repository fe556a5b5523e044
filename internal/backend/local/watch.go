package local

import (
	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/log"
	"github.com/zjrosen/atelier/internal/watcher"
)

// ChangedOnDisk is the status event for an outside edit of the main module.
const ChangedOnDisk = "Main module changed on disk"

// watch forwards debounced changes of one main module to the stream.
type watch struct {
	w    *watcher.Watcher
	done chan struct{}
}

// startWatch returns nil when the module cannot be watched; the project
// still opens without it.
func (b *Backend) startWatch(path string) *watch {
	cfg := watcher.DefaultConfig(path)
	if b.cfg.WatchDebounce > 0 {
		cfg.DebounceDur = b.cfg.WatchDebounce
	}
	w, err := watcher.New(cfg)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Failed to create watcher", err, "path", path)
		return nil
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		log.ErrorErr(log.CatWatcher, "Failed to watch main module", err, "path", path)
		return nil
	}

	wt := &watch{w: w, done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-changes:
				b.notifier.Emit(backend.Event{Label: ChangedOnDisk})
			case <-wt.done:
				return
			}
		}
	}()
	return wt
}

func (wt *watch) stop() {
	if wt == nil {
		return
	}
	close(wt.done)
	if err := wt.w.Stop(); err != nil {
		log.ErrorErr(log.CatWatcher, "Failed to stop watcher", err)
	}
}
