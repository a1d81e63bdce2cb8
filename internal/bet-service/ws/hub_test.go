package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var got map[string]any
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	return got
}

func TestSubscribeGetsLastSnapshotThenUpdates(t *testing.T) {
	h := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	h.Broadcast(TopicBoard, map[string]int{"bets": 1})

	conn := dial(t, h)
	if err := conn.WriteJSON(ClientMsg{Type: "subscribe", Topic: TopicBoard}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	first := readUpdate(t, conn)
	if first["topic"] != TopicBoard {
		t.Fatalf("unexpected topic: %v", first)
	}
	if p := first["payload"].(map[string]any); p["bets"] != float64(1) {
		t.Fatalf("unexpected payload: %v", p)
	}

	h.Broadcast(TopicCatalog, "ignored")
	h.Broadcast(TopicBoard, map[string]int{"bets": 2})
	second := readUpdate(t, conn)
	if p := second["payload"].(map[string]any); p["bets"] != float64(2) {
		t.Fatalf("expected second board snapshot, got %v", second)
	}
}

func TestPingAndUnknownTopic(t *testing.T) {
	h := NewHub(zap.NewNop(), func(*http.Request) bool { return true })
	conn := dial(t, h)

	_ = conn.WriteJSON(ClientMsg{Type: "ping"})
	if got := readUpdate(t, conn); got["type"] != "pong" {
		t.Fatalf("expected pong, got %v", got)
	}

	_ = conn.WriteJSON(ClientMsg{Type: "subscribe", Topic: "odds"})
	if got := readUpdate(t, conn); got["type"] != "error" {
		t.Fatalf("expected error, got %v", got)
	}
	if n := h.Subscribers("odds"); n != 0 {
		t.Errorf("unknown topic registered %d subscribers", n)
	}
}

func TestBroadcastMarshalError(t *testing.T) {
	h := NewHub(zap.NewNop(), nil)
	h.Broadcast(TopicBoard, make(chan int))
	if _, ok := h.last[TopicBoard]; ok {
		t.Errorf("unmarshalable payload must not be kept")
	}
	b, _ := json.Marshal(Update{Topic: TopicBoard})
	if !strings.Contains(string(b), `"payload":null`) {
		t.Errorf("unexpected encoding %s", b)
	}
}
