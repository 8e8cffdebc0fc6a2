// Package ws implements the display surface as a websocket hub: every scope
// subscriber receives the latest display payload whenever a session mutates.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/duelboard/duelboard/internal/surface"
)

const writeTimeout = 5 * time.Second

// Hub tracks scope subscribers and broadcasts payload updates to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn

	// writeMu serializes writes; gorilla connections allow one writer at a time.
	writeMu sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Update implements surface.Surface by broadcasting the payload to every
// subscriber of the scope. Dead connections are dropped along the way.
func (h *Hub) Update(ctx context.Context, scope string, payload surface.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs[scope]))
	for sub := range h.subs[scope] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		if err := sub.write(data); err != nil {
			h.remove(scope, sub)
		}
	}
	return nil
}

func (s *subscriber) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Subscribe upgrades the request and registers the connection for scope
// updates until the peer disconnects.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, scope string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{conn: conn}
	h.mu.Lock()
	if h.subs[scope] == nil {
		h.subs[scope] = make(map[*subscriber]struct{})
	}
	h.subs[scope][sub] = struct{}{}
	h.mu.Unlock()

	go h.readLoop(scope, sub)
	return nil
}

// readLoop drains inbound frames so pings are handled and the close frame is
// noticed, then unregisters the subscriber.
func (h *Hub) readLoop(scope string, sub *subscriber) {
	defer h.remove(scope, sub)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("display subscriber dropped scope=%s err=%v", scope, err)
			}
			return
		}
	}
}

func (h *Hub) remove(scope string, sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[scope]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, scope)
		}
	}
	h.mu.Unlock()
	_ = sub.conn.Close()
}

// SubscriberCount reports the live subscriber count for a scope.
func (h *Hub) SubscriberCount(scope string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[scope])
}
