// Package persist keeps a typed value in a storage.Backend and keeps the
// in-memory copy in step with changes made by other processes.
package persist

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/storage"
)

// Store is a single named value persisted as JSON. It never returns storage or
// decoding errors: they are logged and the caller's default is used instead.
type Store[T any] struct {
	backend storage.Backend
	key     string
	def     T
	logger  logger.Logger

	mu        sync.Mutex
	value     T
	observers map[int]func(T)
	nextID    int
}

// New loads key from backend, falling back to def when the value is absent,
// malformed, or the backend fails.
func New[T any](ctx context.Context, backend storage.Backend, key string, def T, log logger.Logger) *Store[T] {
	s := &Store[T]{
		backend:   backend,
		key:       key,
		def:       def,
		logger:    log,
		observers: make(map[int]func(T)),
	}
	s.value = s.load(ctx)
	return s
}

func (s *Store[T]) load(ctx context.Context) T {
	data, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn(ctx, "Failed to read %s, using default: %v", s.key, err)
		return s.def
	}
	if !ok {
		return s.def
	}
	v, err := decode[T](data)
	if err != nil {
		s.logger.Warn(ctx, "Malformed value for %s, using default: %v", s.key, err)
		return s.def
	}
	return v
}

func decode[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

// Key returns the storage key this store is bound to.
func (s *Store[T]) Key() string {
	return s.key
}

// Get returns the current in-memory value.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and writes it through. Write failures are logged;
// the in-memory value is kept either way.
func (s *Store[T]) Set(ctx context.Context, v T) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()

	s.write(ctx, v)
}

// Update applies fn to the current value and stores the result.
func (s *Store[T]) Update(ctx context.Context, fn func(T) T) T {
	s.mu.Lock()
	v := fn(s.value)
	s.value = v
	s.mu.Unlock()

	s.write(ctx, v)
	return v
}

func (s *Store[T]) write(ctx context.Context, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error(ctx, "Failed to encode %s: %v", s.key, err)
		return
	}
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		s.logger.Error(ctx, "Failed to persist %s: %v", s.key, err)
	}
}

// Subscribe registers fn to run whenever another context changes the value.
// fn receives the new in-memory value. The returned func unsubscribes.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// apply replaces the in-memory value after an external change. Deleted and
// malformed values reset to the default.
func (s *Store[T]) apply(ctx context.Context, change storage.Change) {
	v := s.def
	if !change.Deleted {
		decoded, err := decode[T](change.Value)
		if err != nil {
			s.logger.Warn(ctx, "Malformed external update for %s, resetting to default: %v", s.key, err)
		} else {
			v = decoded
		}
	}

	s.mu.Lock()
	s.value = v
	observers := make([]func(T), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(v)
	}
}
