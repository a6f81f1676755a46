package wizard

import (
	"sync"
	"time"
)

// Store keeps at most one active wizard session per conversation. Sessions
// for different conversations are fully independent; access to any single
// session goes through the store's lock, giving the single-writer step
// discipline the engine relies on.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewStore creates a session store. Sessions idle longer than ttl are
// discarded by a background sweep.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}

	go s.cleanupLoop()

	return s
}

// Get returns the active session for a conversation, or nil.
func (s *Store) Get(convID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[convID]
}

// Put installs a session for a conversation, replacing any existing one.
func (s *Store) Put(convID string, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[convID] = session
}

// Delete removes the conversation's session.
func (s *Store) Delete(convID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, convID)
}

// cleanupLoop removes stale sessions.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for convID, session := range s.sessions {
			if now.Sub(session.lastActive) > s.ttl {
				delete(s.sessions, convID)
			}
		}
		s.mu.Unlock()
	}
}
