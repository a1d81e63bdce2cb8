package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// client serializa as escritas: o gorilla só aceita um writer por conexão
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por tópico
// subs: mapeia tópico para o conjunto de clientes inscritos
// last: último snapshot de cada tópico, entregue logo no subscribe
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	subs     map[string]map[*client]struct{}
	last     map[string][]byte
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(log *zap.Logger, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		subs:     make(map[string]map[*client]struct{}),
		last:     make(map[string][]byte),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	c := &client{conn: conn}

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if !validTopic(msg.Topic) {
				h.reply(c, map[string]string{"type": "error", "error": "unknown topic"})
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.Topic]; !ok {
				h.subs[msg.Topic] = make(map[*client]struct{})
			}
			h.subs[msg.Topic][c] = struct{}{}
			snap := h.last[msg.Topic]
			h.mu.Unlock()
			if snap != nil {
				_ = c.write(snap)
			}
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.Topic]; ok {
				delete(m, c)
				if len(m) == 0 {
					delete(h.subs, msg.Topic)
				}
			}
			h.mu.Unlock()
		case "ping":
			h.reply(c, map[string]string{"type": "pong"})
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for topic, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, topic)
		}
	}
	h.mu.Unlock()
}

// Broadcast guarda o snapshot e envia para todos os inscritos no tópico
func (h *Hub) Broadcast(topic string, payload any) {
	b, err := json.Marshal(Update{Topic: topic, Payload: payload})
	if err != nil {
		h.log.Error("ws marshal", zap.String("topic", topic), zap.Error(err))
		return
	}

	h.mu.Lock()
	h.last[topic] = b
	conns := make([]*client, 0, len(h.subs[topic]))
	for c := range h.subs[topic] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.write(b); err != nil {
			h.log.Debug("ws write", zap.String("topic", topic), zap.Error(err))
		}
	}
}

// Subscribers retorna quantos clientes estão inscritos no tópico
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

func (h *Hub) reply(c *client, v any) {
	b, _ := json.Marshal(v)
	_ = c.write(b)
}

func validTopic(t string) bool { return t == TopicCatalog || t == TopicBoard }
