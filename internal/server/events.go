package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/airctrl/internal/interaction"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 2 * time.Second
	// clientBuffer is how many frames may queue for a slow client before
	// newer frames are dropped.
	clientBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameSource publishes processed frames.
type FrameSource interface {
	Subscribe(fn func(interaction.Frame)) func()
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// EventsHandler broadcasts every processed frame as JSON to websocket
// clients.
type EventsHandler struct {
	clients     map[*client]struct{}
	mu          sync.RWMutex
	unsubscribe func()
}

// NewEventsHandler creates an EventsHandler subscribed to src.
func NewEventsHandler(src FrameSource) *EventsHandler {
	h := &EventsHandler{
		clients: make(map[*client]struct{}),
	}
	h.unsubscribe = src.Subscribe(h.publish)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	// Reads only detect the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

// publish queues f for every client. Clients with a full queue miss f.
func (h *EventsHandler) publish(f interaction.Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(f)
	if err != nil {
		log.Printf("failed to encode frame: %v", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops receiving frames and disconnects every client.
func (h *EventsHandler) Close() {
	h.unsubscribe()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
}
