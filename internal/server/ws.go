package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/pointer"
)

const (
	hubBuffer    = 64
	writeTimeout = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Hub streams pointer frames to WebSocket clients.
//
// Publish never blocks the frame loop: when the buffer is full the frame
// is dropped. New clients first receive the latest frame.
type Hub struct {
	logger  zerolog.Logger
	in      chan []byte
	clients map[*websocket.Conn]bool
	last    []byte
	dropped uint64
	mu      sync.Mutex
}

// NewHub creates a hub. Call Run to start broadcasting.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		in:      make(chan []byte, hubBuffer),
		clients: make(map[*websocket.Conn]bool),
	}
}

// Publish queues a frame for broadcast.
func (h *Hub) Publish(frame pointer.Frame) {
	msg, err := json.Marshal(frame)
	if err != nil {
		h.logger.Warn().Err(err).Msg("encode frame")
		return
	}
	select {
	case h.in <- msg:
	default:
		h.mu.Lock()
		h.dropped++
		h.mu.Unlock()
	}
}

// Dropped returns how many frames were discarded because the buffer was full.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run broadcasts queued frames until ctx is done, then closes all clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.in:
			h.broadcast(msg)
		}
	}
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug().Err(err).Msg("dropping websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	h.mu.Lock()
	if h.last != nil {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		conn.WriteMessage(websocket.TextMessage, h.last)
	}
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.clients[conn] {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
