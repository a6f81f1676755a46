// Package gateway exposes the command engine over WebSocket. Each
// connection is its own conversation: one text frame in is one line of
// command input, one JSON frame out is the batch outcome.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stewardapp/steward/internal/engine"
	"github.com/stewardapp/steward/internal/logging"
	"github.com/stewardapp/steward/internal/reminders"
)

const (
	// wsPingInterval is the interval between ping frames sent to the client.
	wsPingInterval = 30 * time.Second
	// wsPongTimeout is how long to wait for a pong response before closing.
	wsPongTimeout = 10 * time.Second
	// wsWriteTimeout is the deadline for writing a message to the client.
	wsWriteTimeout = 5 * time.Second
	// maxInputBytes caps one inbound command line.
	maxInputBytes = 64 * 1024
)

// Config holds gateway server configuration.
type Config struct {
	// Host is the network interface to bind to (e.g., "127.0.0.1").
	Host string `yaml:"host"`
	// Port is the TCP port number to listen on.
	Port int `yaml:"port"`
}

// DefaultConfig binds to loopback.
func DefaultConfig() *Config {
	return &Config{Host: "127.0.0.1", Port: 9090}
}

// Server handles WebSocket command sessions and a small HTTP surface
// (/health, /api/v1/status). Safe for concurrent use.
type Server struct {
	config     *Config
	authConfig *AuthConfig
	engine     *engine.Engine
	sessions   *SessionManager
	upgrader   websocket.Upgrader
	log        *slog.Logger

	mu      sync.RWMutex
	server  *http.Server
	running bool
}

// ServerOption is a functional option for configuring Server.
type ServerOption func(*Server)

// WithAuthConfig protects /api/v1/* endpoints with the given auth settings.
func WithAuthConfig(auth *AuthConfig) ServerOption {
	return func(s *Server) {
		s.authConfig = auth
	}
}

// NewServer creates a gateway over the engine. The server is not started
// until Start is called.
func NewServer(config *Config, eng *engine.Engine, opts ...ServerOption) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server{
		config:   config,
		engine:   eng,
		sessions: NewSessionManager(),
		log:      logging.WithComponent("gateway"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// No origin: same-origin or a non-browser client.
				if origin == "" {
					return true
				}
				return strings.HasPrefix(origin, "http://localhost") ||
					strings.HasPrefix(origin, "http://127.0.0.1") ||
					strings.HasPrefix(origin, "https://localhost") ||
					strings.HasPrefix(origin, "https://127.0.0.1")
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving all gateway routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	if s.authConfig != nil {
		auth := NewAuthenticator(s.authConfig)
		mux.Handle("/api/v1/status", auth.Middleware(http.HandlerFunc(s.handleStatus)))
	} else {
		mux.HandleFunc("/api/v1/status", s.handleStatus)
	}
	return mux
}

// DigestSink returns a reminders sink that broadcasts digests to every
// connected session.
func (s *Server) DigestSink() reminders.Sink {
	return func(ctx context.Context, digest *reminders.Digest) {
		s.sessions.Broadcast(map[string]any{
			"type":    "reminder",
			"message": digest.Format(),
			"due":     digest.Due,
		})
	}
}

// Start runs the server until the context is cancelled or listening fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.mu.Unlock()

	s.log.Info("gateway starting", slog.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully stops the server, waiting for active connections.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.running = false
	return s.server.Shutdown(ctx)
}

// handleWebSocket runs one command conversation over a socket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade error", slog.Any("error", err))
		return
	}

	session := s.sessions.Create(conn)
	defer s.sessions.Remove(session.ID)

	s.log.Info("session connected",
		slog.String("conversation_id", session.ID),
		slog.String("remote", r.RemoteAddr),
	)

	conn.SetReadLimit(maxInputBytes)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPingInterval + wsPongTimeout))
	})
	_ = conn.SetReadDeadline(time.Now().Add(wsPingInterval + wsPongTimeout))

	inputs := make(chan string)
	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					s.log.Warn("websocket read error", slog.Any("error", err))
				}
				return
			}
			// The select loop may have exited on a write or ping
			// failure; never block on a send it will not receive.
			select {
			case inputs <- string(message):
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case input := <-inputs:
			outcome := s.engine.Handle(ctx, session.ID, input)
			if err := session.SendJSON(outcome); err != nil {
				s.log.Debug("websocket write error", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			if err := session.Ping(); err != nil {
				return
			}
		case <-done:
			s.log.Info("session closed", slog.String("conversation_id", session.ID))
			return
		}
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

// handleStatus reports server state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"running":  running,
		"sessions": s.sessions.Count(),
	})
}
