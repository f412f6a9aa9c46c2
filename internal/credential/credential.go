// Package credential holds the Gemini API key as an explicit, replaceable
// configuration object backed by persistent storage.
package credential

import (
	"context"
	"errors"
	"strings"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/persist"
	"github.com/nguyentantai21042004/chapter-digest/internal/storage"
)

// StorageKey is the persisted key name for the API key.
const StorageKey = "gemini-api-key"

// ErrEmptyKey is returned when setting a blank key.
var ErrEmptyKey = errors.New("api key cannot be empty")

type Store struct {
	store *persist.Store[*string]
}

func New(ctx context.Context, backend storage.Backend, log logger.Logger) *Store {
	return &Store{store: persist.New[*string](ctx, backend, StorageKey, nil, log)}
}

// Persisted exposes the underlying store so it can be registered with a
// persist.Syncer.
func (s *Store) Persisted() *persist.Store[*string] {
	return s.store
}

// APIKey returns the configured key. Whitespace-only keys count as absent.
func (s *Store) APIKey() (string, bool) {
	v := s.store.Get()
	if v == nil {
		return "", false
	}
	key := strings.TrimSpace(*v)
	return key, key != ""
}

func (s *Store) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	s.store.Set(ctx, &key)
	return nil
}

func (s *Store) Clear(ctx context.Context) {
	s.store.Set(ctx, nil)
}

// Seed stores key only when no key is configured yet. It reports whether the
// key was stored.
func (s *Store) Seed(ctx context.Context, key string) bool {
	if _, ok := s.APIKey(); ok {
		return false
	}
	return s.Set(ctx, key) == nil
}
