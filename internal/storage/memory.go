package storage

import (
	"context"
	"sync"
	"time"

	"steptrack/internal/core"
)

// MemoryStore holds the serialized snapshot in memory. Used for tests
// and for running the server without durable storage.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (core.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.payload == nil {
		return core.NewAppState(), nil
	}
	return decodeState(s.payload)
}

func (s *MemoryStore) Save(ctx context.Context, state core.AppState) error {
	data, err := encodeState(state, time.Now().UTC())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.payload = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Corrupt overwrites the stored payload with garbage. Test helper for
// the malformed-state fallback path.
func (s *MemoryStore) Corrupt() {
	s.mu.Lock()
	s.payload = []byte("{not json")
	s.mu.Unlock()
}
