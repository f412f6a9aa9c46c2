package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

const fileExt = ".json"

type fileBackend struct {
	dir    string
	logger logger.Logger
	known  *snapshot

	// writeMu keeps a local write and its snapshot update atomic with
	// respect to inspect.
	writeMu sync.Mutex

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
}

// NewFile stores each key as its own file under dir and watches the directory
// with fsnotify for writes from other processes.
func NewFile(dir string, log logger.Logger) (Backend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &fileBackend{
		dir:    dir,
		logger: log,
		known:  newSnapshot(),
	}, nil
}

func (f *fileBackend) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

// keyFor maps a file name back to its key. Dot-files are temp files.
func keyFor(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != fileExt {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(base, fileExt))
	if err != nil {
		return "", false
	}
	return key, true
}

func (f *fileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		f.known.forget(key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	f.known.remember(key, data)
	return data, true, nil
}

func (f *fileBackend) Set(ctx context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.known.remember(key, value)
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (f *fileBackend) Remove(ctx context.Context, key string) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.known.forget(key)
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (f *fileBackend) Watch(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(f.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	f.mu.Lock()
	f.watchers = append(f.watchers, watcher)
	f.mu.Unlock()

	changes := make(chan Change, 16)
	go f.loop(ctx, watcher, changes)
	return changes, nil
}

func (f *fileBackend) loop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- Change) {
	defer close(changes)
	defer watcher.Close()

	f.logger.Debug(ctx, "Watching %s for external changes", f.dir)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			key, ok := keyFor(event.Name)
			if !ok {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			change, changed := f.inspect(ctx, key)
			if !changed {
				continue
			}
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn(ctx, "Storage watcher error: %v", err)
		}
	}
}

// inspect re-reads key after a filesystem event and reports a Change when the
// content differs from what this context last saw.
func (f *fileBackend) inspect(ctx context.Context, key string) (Change, bool) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		if f.known.observe(key, nil, true) {
			return Change{Key: key, Deleted: true}, true
		}
		return Change{}, false
	}
	if err != nil {
		f.logger.Warn(ctx, "Failed to read changed key %s: %v", key, err)
		return Change{}, false
	}
	if f.known.observe(key, data, false) {
		return Change{Key: key, Value: data}, true
	}
	return Change{}, false
}

func (f *fileBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for _, w := range f.watchers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.watchers = nil
	return errors.Join(errs...)
}
