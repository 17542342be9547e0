package level

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce absorbs the burst of events an editor produces on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a catalog file whenever it changes.
type Watcher struct {
	path     string
	clock    quartz.Clock
	debounce time.Duration
	onReload func(*Catalog)
	logger   *log.Logger
}

// NewWatcher creates a watcher for path. onReload receives every catalog that
// parses and validates; broken edits are logged and skipped.
func NewWatcher(path string, clock quartz.Clock, logger *log.Logger, onReload func(*Catalog)) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		clock:    clock,
		debounce: DefaultDebounce,
		onReload: onReload,
		logger:   logger.WithPrefix("levels").With("path", path),
	}
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory: editors often replace the file rather than write it.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("Watching level catalog")

	reload := make(chan struct{}, 1)
	var timer *quartz.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = w.clock.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			}, "levels", "debounce")

		case <-reload:
			catalog, err := Load(w.path)
			if err != nil {
				w.logger.Warn("Ignoring invalid level catalog", "error", err)
				continue
			}
			if catalog.Len() == 0 {
				w.logger.Warn("Ignoring empty level catalog")
				continue
			}
			w.logger.Info("Reloaded level catalog", "levels", catalog.Len())
			w.onReload(catalog)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", "error", err)
		}
	}
}
