// Package session keeps the per-session conversation context between chat
// turns.
package session

import (
	"context"
	"sync"
	"time"

	"padelchat/internal/model"
)

// Store persists one ConversationContext per session id. Load never returns a
// nil context without an error; an unknown session yields an empty context.
type Store interface {
	Load(ctx context.Context, sessionID string) (*model.ConversationContext, error)
	Save(ctx context.Context, sessionID string, c *model.ConversationContext) error
	Clear(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	value     model.ConversationContext
	expiresAt time.Time
}

// MemoryStore keeps contexts in process memory. Every Load or Save restarts
// the TTL and entries idle for longer are dropped on access; a zero TTL keeps
// them forever.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*model.ConversationContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return &model.ConversationContext{}, nil
	}
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.entries, sessionID)
		return &model.ConversationContext{}, nil
	}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
		s.entries[sessionID] = e
	}
	v := e.value
	if v.Court != nil {
		court := *v.Court
		v.Court = &court
	}
	return &v, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c *model.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.IsEmpty() {
		delete(s.entries, sessionID)
		return nil
	}
	v := *c
	if v.Court != nil {
		court := *v.Court
		v.Court = &court
	}
	s.entries[sessionID] = memoryEntry{value: v, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
