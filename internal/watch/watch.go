// Package watch reports when model files change on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/logger"
)

// DefaultDelay is how long a file must stay quiet before its change is
// reported. Editors often write a file in several steps.
const DefaultDelay = 100 * time.Millisecond

// Watcher reports changed files on a channel. Directories are watched
// rather than files so editors that replace a file by renaming over it
// are still seen.
type Watcher struct {
	fs      *fsnotify.Watcher
	files   map[string]string // cleaned path -> path as given
	changes chan string
	delay   time.Duration
	log     *zap.Logger
}

// New watches paths. Changes are reported with the path as given here.
func New(paths []string, delay time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fs:      fs,
		files:   make(map[string]string, len(paths)),
		changes: make(chan string, 16),
		delay:   delay,
		log:     logger.Named("watch"),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.files[abs] = p
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		w.log.Debug("watching directory", zap.String("dir", dir))
	}
	return w, nil
}

// Changes returns the channel changed paths are sent on. A path that
// changes again before the receiver catches up is not queued twice.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run forwards changes until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.delay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if p, watched := w.files[filepath.Clean(event.Name)]; watched {
				pending[p] = time.Now()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case now := <-ticker.C:
			for p, last := range pending {
				if now.Sub(last) < w.delay {
					continue
				}
				delete(pending, p)
				select {
				case w.changes <- p:
					w.log.Debug("file changed", zap.String("path", p))
				default:
					w.log.Warn("change dropped, receiver is behind", zap.String("path", p))
				}
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
