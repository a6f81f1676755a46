package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Session is one connected client. Its ID doubles as the conversation ID
// for the engine, so wizard state and the active project live per socket.
type Session struct {
	ID        string
	Conn      *websocket.Conn
	CreatedAt time.Time

	mu sync.Mutex // serializes writes to Conn
}

// SessionManager tracks active sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Create registers a session for a new connection.
func (m *SessionManager) Create(conn *websocket.Conn) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := &Session{
		ID:        uuid.NewString(),
		Conn:      conn,
		CreatedAt: time.Now(),
	}
	m.sessions[session.ID] = session
	return session
}

// Remove closes and forgets a session.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[id]; ok {
		session.Conn.Close()
		delete(m.sessions, id)
	}
}

// Count returns the number of active sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Broadcast sends a JSON payload to every session. Used for reminder
// digests, which are not tied to any conversation.
func (m *SessionManager) Broadcast(v any) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, session := range m.sessions {
		_ = session.SendJSON(v)
	}
}

// SendJSON writes one JSON message to this session.
func (s *Session) SendJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.Conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.Conn.WriteJSON(v)
}

// Ping sends a ping control frame.
func (s *Session) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.Conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.Conn.WriteMessage(websocket.PingMessage, nil)
}
