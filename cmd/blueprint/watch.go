package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alexisbeaulieu97/blueprint/internal/logger"
)

const defaultDebounce = 200 * time.Millisecond

// fileWatcher reports debounced changes to a single file. The parent
// directory is watched so editors that save by rename are still seen.
type fileWatcher struct {
	fs       *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      *logger.Logger
}

func newFileWatcher(path string, debounce time.Duration, log *logger.Logger) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &fileWatcher{fs: fsw, path: abs, debounce: debounce, log: log}, nil
}

// Run calls onChange after each burst of writes settles, until ctx is done.
// onChange is never called concurrently.
func (w *fileWatcher) Run(ctx context.Context, onChange func()) error {
	defer w.fs.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "file watcher error")

		case <-fire:
			fire = nil
			w.log.WithFields(map[string]any{"file": w.path}).Debug("workflow changed")
			onChange()
		}
	}
}
