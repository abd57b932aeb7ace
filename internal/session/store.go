package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-backend/pkg/api"
)

// Store is the process-wide registry mapping session id -> conversation
// history. Lookups are lenient: an unknown id behaves like an empty history,
// never an error. Implementations must be safe for concurrent use.
type Store interface {
	// Create registers an empty history under a fresh random id and returns
	// the id.
	Create() string
	// History returns the history bound to id, or an empty history if id is
	// unknown.
	History(id string) []api.Turn
	// Reset binds id to a fresh empty history, creating the binding if it
	// did not exist. Idempotent.
	Reset(id string)
	// Replace overwrites the history bound to id.
	Replace(id string, history []api.Turn)
}

type entry struct {
	history      []api.Turn
	lastAccessed time.Time
}

// MemoryStore keeps all sessions in a mutex-guarded map. Sessions live for
// the lifetime of the process unless an idle TTL is configured via
// StartJanitor.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entry)}
}

func (s *MemoryStore) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{history: []api.Turn{}, lastAccessed: time.Now()}
	return id
}

func (s *MemoryStore) History(id string) []api.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return []api.Turn{}
	}
	e.lastAccessed = time.Now()
	return e.history
}

func (s *MemoryStore) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{history: []api.Turn{}, lastAccessed: time.Now()}
}

func (s *MemoryStore) Replace(id string, history []api.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{history: history, lastAccessed: time.Now()}
}

// Len reports the number of registered sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor evicts sessions idle longer than ttl, checking every interval,
// until ctx is cancelled. A zero or negative ttl disables eviction entirely,
// in which case sessions accumulate for the lifetime of the process.
func (s *MemoryStore) StartJanitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictIdle(ttl)
			}
		}
	}()
}

func (s *MemoryStore) evictIdle(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if e.lastAccessed.Before(cutoff) {
			delete(s.sessions, id)
			slog.Info("evicted idle session", "session_id", id)
		}
	}
}
