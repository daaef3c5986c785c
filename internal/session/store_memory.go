package session

import (
	"context"
	"encoding/json"
	"sync"

	dErrors "bizdir/pkg/domain-errors"
)

// MemoryStore mirrors RedisStore semantics for unit tests and local runs
// without a session backend. Values are deep-copied through JSON so callers
// never share mutable state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	raw, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "decode session", err)
	}
	return &sess, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "encode session", err)
	}
	s.mu.Lock()
	s.sessions[sess.ID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
