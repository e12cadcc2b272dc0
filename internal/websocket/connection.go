package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Connection is one client socket. ID is the player identity for every
// game operation issued over it.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	hub  *Hub

	mu     sync.Mutex
	send   chan []byte
	closed bool

	ConnectedAt time.Time
}

func newConnection(id string, conn *websocket.Conn, hub *Hub) *Connection {
	return &Connection{
		ID:          id,
		Conn:        conn,
		hub:         hub,
		send:        make(chan []byte, hub.config.SendBufferSize),
		ConnectedAt: time.Now(),
	}
}

// Age is how long the connection has been open.
func (c *Connection) Age() time.Duration {
	return time.Since(c.ConnectedAt)
}

// enqueue queues payload without blocking. It returns false when the
// buffer is full; a closed connection silently drops the payload.
func (c *Connection) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend stops the write pump after it flushed what is queued.
func (c *Connection) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Connection) close() {
	if err := c.Conn.Close(); err != nil {
		log.Debug().Err(err).Str("connection_id", c.ID).Msg("error closing connection")
	}
}

// writePump sends queued messages and keepalive pings.
func (c *Connection) writePump() {
	cfg := c.hub.config
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to write message to websocket")
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump feeds inbound frames to the handler one at a time and reports
// the disconnect when the socket fails.
func (c *Connection) readPump() {
	cfg := c.hub.config
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	c.Conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("connection_id", c.ID).Msg("unexpected websocket close")
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))

		if c.hub.handler != nil {
			c.hub.handler.HandleMessage(c.ID, message)
		}
	}
}
