package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atarjan/memebet/internal/logger"
	"github.com/atarjan/memebet/internal/models"
)

const (
	writeWait = 10 * time.Second

	// broadcastBacklog bounds queued events; the feed ticks every few
	// seconds, so a full queue means every client is stalled.
	broadcastBacklog = 32
)

// Hub fans activity events out to connected websocket clients. The feed is
// strictly one-way: clients receive events and never write back.
//
// The clients map is owned by the Run goroutine; registration, teardown and
// broadcast all go through channels, so no lock is needed.
type Hub struct {
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan models.ActivityEvent
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub. Call Run in a goroutine before registering clients.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan models.ActivityEvent, broadcastBacklog),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until Stop. Slow or broken clients are dropped on
// the first failed write rather than stalling the rest.
func (h *Hub) Run() {
	clients := make(map[*websocket.Conn]bool)
	defer func() {
		for conn := range clients {
			conn.Close()
		}
	}()

	for {
		select {
		case <-h.done:
			return
		case conn := <-h.register:
			clients[conn] = true
			logger.Debug("Feed socket connected (%d active)", len(clients))
		case conn := <-h.unregister:
			if clients[conn] {
				delete(clients, conn)
				conn.Close()
			}
		case event := <-h.broadcast:
			for conn := range clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(event); err != nil {
					logger.Debug("Dropping feed socket: %v", err)
					delete(clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// Broadcast queues an event for delivery to every connected client. Events
// are dropped when the queue is full; the feed buffer endpoint remains the
// source of truth for catch-up.
func (h *Hub) Broadcast(event models.ActivityEvent) {
	select {
	case h.broadcast <- event:
	case <-h.done:
	default:
		logger.Warn("Feed broadcast queue full, dropping event %s", event.ID)
	}
}

// Stop shuts the hub down and closes every client connection. Idempotent.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
