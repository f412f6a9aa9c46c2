package persist

import (
	"context"
	"fmt"
	"sync"

	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
	"github.com/nguyentantai21042004/chapter-digest/internal/storage"
)

// Receiver is anything that accepts external changes for one key. *Store[T]
// satisfies it for every T.
type Receiver interface {
	Key() string
	apply(ctx context.Context, change storage.Change)
}

// Syncer fans backend changes out to the stores registered for each key.
type Syncer struct {
	backend storage.Backend
	logger  logger.Logger

	mu        sync.Mutex
	receivers map[string][]Receiver
}

func NewSyncer(backend storage.Backend, log logger.Logger) *Syncer {
	return &Syncer{
		backend:   backend,
		logger:    log,
		receivers: make(map[string][]Receiver),
	}
}

// Register adds r to the fan-out for its key.
func (s *Syncer) Register(r Receiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivers[r.Key()] = append(s.receivers[r.Key()], r)
}

// Run dispatches changes until ctx is done or the backend stops watching.
func (s *Syncer) Run(ctx context.Context) error {
	changes, err := s.backend.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch storage: %w", err)
	}

	for change := range changes {
		s.dispatch(ctx, change)
	}
	return ctx.Err()
}

func (s *Syncer) dispatch(ctx context.Context, change storage.Change) {
	s.mu.Lock()
	receivers := append([]Receiver(nil), s.receivers[change.Key]...)
	s.mu.Unlock()

	if len(receivers) == 0 {
		return
	}
	s.logger.Debug(ctx, "External change for %s (deleted=%v)", change.Key, change.Deleted)
	for _, r := range receivers {
		r.apply(ctx, change)
	}
}
