// Package idempotency remembers responses of client-keyed requests so a retried
// request is answered from the first execution instead of running twice.
package idempotency

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotStarted = errors.New("idempotency: key was not started")

type State string

const (
	StateInFlight State = "in_flight"
	StateDone     State = "done"
)

type Record struct {
	State       State  `json:"state"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Store claims keys atomically.
//
// Begin returns started=true when the caller now owns the key. Otherwise it
// returns the record that is already there (in flight or done).
type Store interface {
	Begin(ctx context.Context, key string, ttl time.Duration) (rec *Record, started bool, err error)
	Complete(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Begin(_ context.Context, key string, ttl time.Duration) (*Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && s.now().Before(e.expiresAt) {
		rec := e.rec
		return &rec, false, nil
	}
	s.entries[key] = memoryEntry{rec: Record{State: StateInFlight}, expiresAt: s.now().Add(ttl)}
	return nil, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return ErrNotStarted
	}
	rec.State = StateDone
	s.entries[key] = memoryEntry{rec: rec, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
