package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/jaikisan157/shadowchat/internal/config"
	"github.com/jaikisan157/shadowchat/internal/model/persona"
	"github.com/jaikisan157/shadowchat/internal/service/bot"
	"github.com/jaikisan157/shadowchat/internal/service/match"
)

func testMatchConfig() config.MatchConfig {
	return config.MatchConfig{
		AffinityWindow:        15 * time.Second,
		RetrySweepInterval:    3 * time.Second,
		FallbackThreshold:     30 * time.Second,
		FallbackSweepInterval: 5 * time.Second,
		StaleTimeout:          5 * time.Minute,
		StaleSweepInterval:    time.Minute,
		IdleTimeout:           3 * time.Minute,
		IdleSweepInterval:     30 * time.Second,
		PingInterval:          15 * time.Second,
		PingMissLimit:         2,
		MaxInterests:          5,
	}
}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := persona.NewMemoryStore(persona.Seed())
	botSvc, err := bot.NewService(context.Background(), store, config.AIConfig{})
	if err != nil {
		t.Fatalf("bot.NewService err: %v", err)
	}

	matchSvc := match.NewService(testMatchConfig(), botSvc)

	r := chi.NewRouter()
	New(matchSvc, testMatchConfig()).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, device string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if device != "" {
		url += "?device=" + device
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitFor reads frames until one with the wanted type arrives, skipping
// broadcasts like online_count that interleave with the frame under test.
func waitFor(t *testing.T, conn *websocket.Conn, wantType string) map[string]any {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var frame map[string]any
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read err while waiting for %s: %v", wantType, err)
		}
		if frame["type"] == wantType {
			return frame
		}
	}
	t.Fatalf("no %s frame arrived in time", wantType)
	return nil
}

func TestConnectReceivesGreeting(t *testing.T) {
	srv := setupServer(t)
	conn := dial(t, srv, "dev-1")

	frame := waitFor(t, conn, "connected")
	if frame["sessionId"] == "" || frame["sessionId"] == nil {
		t.Fatal("connected frame should carry a session id")
	}
	interests, ok := frame["interests"].([]any)
	if !ok || len(interests) != 20 {
		t.Fatalf("connected frame should carry the 20-label catalogue, got %v", frame["interests"])
	}
}

func TestFindMatchStartsWaiting(t *testing.T) {
	srv := setupServer(t)
	conn := dial(t, srv, "dev-1")
	waitFor(t, conn, "connected")

	if err := conn.WriteJSON(map[string]any{"type": "find_match", "interests": []string{"Gaming"}}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	waitFor(t, conn, "waiting")
}

func TestMalformedFrameYieldsError(t *testing.T) {
	srv := setupServer(t)
	conn := dial(t, srv, "dev-1")
	waitFor(t, conn, "connected")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write err: %v", err)
	}

	frame := waitFor(t, conn, "error")
	if frame["message"] != "Invalid message format" {
		t.Fatalf("unexpected error copy %v", frame["message"])
	}
}

func TestUnknownTypeYieldsError(t *testing.T) {
	srv := setupServer(t)
	conn := dial(t, srv, "dev-1")
	waitFor(t, conn, "connected")

	if err := conn.WriteJSON(map[string]any{"type": "teleport"}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	waitFor(t, conn, "error")
}

func TestTwoClientsMatchAndChat(t *testing.T) {
	srv := setupServer(t)

	connA := dial(t, srv, "dev-a")
	waitFor(t, connA, "connected")
	connB := dial(t, srv, "dev-b")
	waitFor(t, connB, "connected")

	if err := connA.WriteJSON(map[string]any{"type": "find_match", "interests": []string{"Gaming"}}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	waitFor(t, connA, "waiting")

	if err := connB.WriteJSON(map[string]any{"type": "find_match", "interests": []string{"gaming"}}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	matchedA := waitFor(t, connA, "matched")
	matchedB := waitFor(t, connB, "matched")
	if matchedA["partnerId"] == "" || matchedB["partnerId"] == "" {
		t.Fatal("matched frames should carry partner ids")
	}

	if err := connA.WriteJSON(map[string]any{"type": "message", "text": "hey stranger"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	delivered := waitFor(t, connB, "message")
	if delivered["text"] != "hey stranger" {
		t.Fatalf("delivered text = %v", delivered["text"])
	}
	if delivered["from"] != "stranger" {
		t.Fatalf("delivered from = %v", delivered["from"])
	}
	waitFor(t, connA, "message_sent")
}

func TestDuplicateTabGetsNotice(t *testing.T) {
	srv := setupServer(t)

	first := dial(t, srv, "dev-dup")
	waitFor(t, first, "connected")

	second := dial(t, srv, "dev-dup")
	waitFor(t, second, "connected")

	waitFor(t, first, "duplicate_tab")
}

func TestEmptyMessageIgnored(t *testing.T) {
	srv := setupServer(t)
	conn := dial(t, srv, "dev-1")
	waitFor(t, conn, "connected")

	if err := conn.WriteJSON(map[string]any{"type": "message", "text": "   "}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	// A follow-up request proves the connection survived and nothing was
	// relayed.
	if err := conn.WriteJSON(map[string]any{"type": "get_interests"}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	waitFor(t, conn, "interests")
}
