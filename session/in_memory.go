package session

import (
	"sync"

	"github.com/docuchat/docuchat/core"
)

// InMemoryStore is a volatile core.SessionStore implementation keeping
// message histories in a process local map. Each session key owns its own
// mutex so that two concurrent requests for the same session serialize
// their read-then-append sequences without requests for distinct sessions
// ever blocking each other. Returned slices are copies to prevent external
// mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*history
}

// history is the per-key record; its mutex serializes all access to msgs.
type history struct {
	mu   sync.Mutex
	msgs []core.Message
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*history)}
}

// get returns the per-key record, creating it lazily.
func (s *InMemoryStore) get(sessionID string) *history {
	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.sessions[sessionID]; ok {
		return h
	}
	h = &history{}
	s.sessions[sessionID] = h
	return h
}

// Get returns a copy of the full message history for the session, empty
// slice if the session has never been seen.
func (s *InMemoryStore) Get(sessionID string) []core.Message {
	h := s.get(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]core.Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Append adds a message to the end of the session history, creating the
// session if absent. It always succeeds.
func (s *InMemoryStore) Append(sessionID string, msg core.Message) {
	h := s.get(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

// RecentWindow returns a copy of the last n messages oldest-first, fewer
// if the history is shorter than n.
func (s *InMemoryStore) RecentWindow(sessionID string, n int) []core.Message {
	h := s.get(sessionID)
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || len(h.msgs) == 0 {
		return []core.Message{}
	}
	start := len(h.msgs) - n
	if start < 0 {
		start = 0
	}
	out := make([]core.Message, len(h.msgs)-start)
	copy(out, h.msgs[start:])
	return out
}
