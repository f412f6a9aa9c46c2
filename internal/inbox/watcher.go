// Package inbox summarizes chapter files as they are dropped into a folder.
package inbox

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

var chapterExts = []string{".txt", ".md", ".markdown"}

type implWatcher struct {
	dir     string
	handler Handler
	logger  logger.Logger
	watcher *fsnotify.Watcher
	// settle is how long a new file is left alone before reading it.
	settle time.Duration
}

// Start handles new chapter files until ctx is done. Only one summary can be
// generated at a time, so files are processed in arrival order.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started. Monitoring: %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !IsChapterFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-chapter file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New chapter detected: %s", event.Name)
			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				return ctx.Err()
			}

			if err := w.handler(ctx, event.Name); err != nil {
				w.logger.Error(ctx, "Failed to process %s: %v", event.Name, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// IsChapterFile reports whether path looks like a plain-text chapter. Hidden
// files are skipped.
func IsChapterFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range chapterExts {
		if ext == e {
			return true
		}
	}
	return false
}
