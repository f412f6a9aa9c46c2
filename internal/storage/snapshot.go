package storage

import (
	"bytes"
	"sync"
)

// snapshot remembers the last bytes this context read or wrote per key, so
// that observed values equal to our own view are not reported as changes.
type snapshot struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newSnapshot() *snapshot {
	return &snapshot{values: make(map[string][]byte)}
}

func (s *snapshot) remember(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = bytes.Clone(value)
}

func (s *snapshot) forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// observe records value (nil with deleted=true for a missing key) and reports
// whether it differs from what was known.
func (s *snapshot) observe(key string, value []byte, deleted bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	known, ok := s.values[key]
	if deleted {
		if !ok {
			return false
		}
		delete(s.values, key)
		return true
	}
	if ok && bytes.Equal(known, value) {
		return false
	}
	s.values[key] = bytes.Clone(value)
	return true
}

func (s *snapshot) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
