package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used when Redis is unreachable at
// startup and by handler tests. Sessions do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	records map[string]memoryRecord
}

type memoryRecord struct {
	principal Principal
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, records: make(map[string]memoryRecord)}
}

func (s *MemoryStore) Create(_ context.Context, p Principal) (string, error) {
	sid := uuid.NewString()
	s.mu.Lock()
	s.records[sid] = memoryRecord{principal: p, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return sid, nil
}

func (s *MemoryStore) Get(_ context.Context, sid string) (Principal, error) {
	s.mu.RLock()
	rec, ok := s.records[sid]
	s.mu.RUnlock()
	if !ok || time.Now().After(rec.expiresAt) {
		return Principal{}, ErrNotFound
	}
	return rec.principal, nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.records, sid)
	s.mu.Unlock()
	return nil
}
