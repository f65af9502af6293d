package network

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mapforge/crossid/internal/platform/metrics"
	"github.com/mapforge/crossid/internal/transfer"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client represents one connected editor instance.
type Client struct {
	id         string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	maxPayload int64
}

// NewClient creates a new bridge client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn, maxPayload int64) *Client {
	return &Client{
		id:         uuid.NewString(),
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 16),
		maxPayload: maxPayload,
	}
}

// ID returns the bridge session id assigned to this client.
func (c *Client) ID() string {
	return c.id
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps validated payload frames from the connection to the hub.
// Frames that fail structural validation are dropped with a diagnostic; the
// connection stays up.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(c.maxPayload)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("bridge read error from %s: %v", c.id, err)
				metrics.Get().RecordWSError()
			}
			break
		}
		if msgType != websocket.BinaryMessage {
			c.hub.logger.Warn("non-binary frame from %s dropped", c.id)
			continue
		}
		metrics.Get().RecordWSMessage(true)

		// Validate before relaying: peers should never receive frames the
		// decoder would reject wholesale.
		_, bad, err := transfer.Decode(message)
		if err != nil {
			metrics.Get().RecordPayloadRejected()
			c.hub.logger.Warn("rejected payload from %s: %v", c.id, err)
			continue
		}
		if len(bad) > 0 {
			metrics.Get().RecordMalformedRecords(len(bad))
			c.hub.logger.Warn("payload from %s carries %d malformed record(s); relaying the rest", c.id, len(bad))
		}

		c.hub.relay <- relayFrame{from: c, data: message}
	}
}

// WritePump pumps frames from the hub to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				metrics.Get().RecordWSError()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
