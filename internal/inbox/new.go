package inbox

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

const defaultSettle = 500 * time.Millisecond

// New creates a Watcher on dir. Files are handed to handler one at a time.
func New(dir string, handler Handler, log logger.Logger) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		dir:     dir,
		handler: handler,
		logger:  log,
		watcher: watcher,
		settle:  defaultSettle,
	}, nil
}
