package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stewardapp/steward/internal/engine"
	"github.com/stewardapp/steward/internal/handlers"
	"github.com/stewardapp/steward/internal/memory"
	"github.com/stewardapp/steward/internal/registry"
)

func newTestServer(t *testing.T, opts ...ServerOption) *httptest.Server {
	t.Helper()

	store, err := memory.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	specs := registry.Default()
	eng := engine.New(specs, handlers.Register(specs, store), store, engine.DefaultConfig())

	srv := httptest.NewServer(NewServer(DefaultConfig(), eng, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s): %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, input string) *engine.BatchOutcome {
	t.Helper()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(input)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var outcome engine.BatchOutcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		t.Fatalf("Unmarshal %q: %v", payload, err)
	}
	return &outcome
}

func TestWebSocketCommandRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	outcome := send(t, conn, `/add project "Phoenix" && /add todo "Ship" --priority=high`)
	if outcome.Executed != 2 {
		t.Fatalf("Executed = %d, want 2 (results %+v)", outcome.Executed, outcome.Results)
	}

	outcome = send(t, conn, "/list todos")
	if len(outcome.Results) != 1 {
		t.Fatalf("len(Results) = %d", len(outcome.Results))
	}
	if !strings.Contains(outcome.Results[0].Message, "Ship") {
		t.Errorf("Message = %q", outcome.Results[0].Message)
	}
}

func TestWebSocketWizardOverSocket(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, `/add project "Phoenix"`)

	outcome := send(t, conn, "/add todo")
	if outcome.Results[0].Type != engine.TypePrompt {
		t.Fatalf("Type = %v, want prompt", outcome.Results[0].Type)
	}

	send(t, conn, "Ship the release")
	send(t, conn, "high")
	outcome = send(t, conn, "")

	// Due-date step skipped; the todo exists now.
	outcome = send(t, conn, "/list todos")
	if !strings.Contains(outcome.Results[0].Message, "Ship the release") {
		t.Errorf("wizard todo missing: %q", outcome.Results[0].Message)
	}
}

func TestSessionsAreSeparateConversations(t *testing.T) {
	srv := newTestServer(t)
	connA := dial(t, srv)
	connB := dial(t, srv)

	send(t, connA, `/add project "Phoenix"`)

	// Session B sees the project but has no active scope.
	outcome := send(t, connB, "/list todos")
	if outcome.Results[0].Type != engine.TypeError {
		t.Errorf("session B inherited session A's active project")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestStatusRequiresToken(t *testing.T) {
	srv := newTestServer(t, WithAuthConfig(&AuthConfig{
		Type:  AuthTypeAPIToken,
		Token: "secret",
	}))

	resp, err := http.Get(srv.URL + "/api/v1/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with token = %d, want 200", resp.StatusCode)
	}
}

func TestReaderGoroutineDrainsOnAbruptClose(t *testing.T) {
	srv := newTestServer(t)
	baseline := runtime.NumGoroutine()

	// Pipeline frames and drop the connection without reading replies.
	// Whatever order the handler observes the frames and the close in,
	// its reader goroutine must exit.
	for i := 0; i < 5; i++ {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("Dial: %v", err)
		}
		for j := 0; j < 3; j++ {
			_ = conn.WriteMessage(websocket.TextMessage, []byte("/list projects"))
		}
		_ = conn.Close()
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+2 {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("goroutines did not drain: baseline %d, now %d", baseline, runtime.NumGoroutine())
}
