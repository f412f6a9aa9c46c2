package inbox

import "context"

// Watcher monitors a directory for new chapter files.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// Handler processes one chapter file.
type Handler func(ctx context.Context, path string) error
