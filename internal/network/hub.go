// Package network implements the transfer bridge: a WebSocket relay that
// forwards serialized clipboard payloads between editor instances. The
// bridge validates frames and moves bytes; it never rewrites identifiers.
// Matching semantics live entirely in the receiving instance.
package network

import (
	"context"
	"sync"

	"github.com/mapforge/crossid/internal/platform/logger"
	"github.com/mapforge/crossid/internal/platform/metrics"
)

// relayFrame is one validated payload moving through the hub.
type relayFrame struct {
	from *Client
	data []byte
}

// Hub maintains the set of connected editor instances and relays payloads
// from each sender to every other peer.
type Hub struct {
	clients    map[*Client]bool
	relay      chan relayFrame
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewHub initializes a new bridge Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		relay:      make(chan relayFrame, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and relays.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Bridge hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("Editor instance %s connected to bridge", client.id)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("Editor instance %s disconnected from bridge", client.id)
			}
			h.mu.Unlock()
		case frame := <-h.relay:
			h.mu.Lock()
			for client := range h.clients {
				if client == frame.from {
					continue
				}
				select {
				case client.send <- frame.data:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}
