package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/handkerchief-backend/internal/game"
)

// MessageHandler consumes inbound frames and disconnects.
type MessageHandler interface {
	HandleMessage(connID string, raw []byte)
	HandleDisconnect(connID string)
}

// Config holds configuration for websocket connections.
type Config struct {
	WriteTimeout    time.Duration
	PongTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		PongTimeout:     60 * time.Second,
		PingInterval:    25 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  64,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Hub tracks live connections and the room groups they are subscribed to,
// and delivers game notifications to them.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	groups map[string]map[string]struct{} // room id -> connection ids

	upgrader websocket.Upgrader
	config   Config
	handler  MessageHandler
}

func NewHub(config Config) *Hub {
	return &Hub{
		conns:  make(map[string]*Connection),
		groups: make(map[string]map[string]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// SetHandler wires the inbound side. It must be called before ServeWS.
func (h *Hub) SetHandler(handler MessageHandler) {
	h.handler = handler
}

// ServeWS upgrades the request and starts the connection pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	c := newConnection(uuid.NewString(), conn, h)
	h.register(c)

	go c.writePump()
	go c.readPump()

	log.Info().
		Str("connection_id", c.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("websocket connection established")
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID] = c
}

// unregister forgets c and tells the handler. Only the read pump calls it.
func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	if _, exists := h.conns[c.ID]; !exists {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c.ID)
	for roomID, members := range h.groups {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.groups, roomID)
		}
	}
	total := len(h.conns)
	h.mu.Unlock()

	c.closeSend()

	log.Info().
		Str("connection_id", c.ID).
		Dur("connected_for", c.Age()).
		Int("total_connections", total).
		Msg("connection unregistered")

	if h.handler != nil {
		h.handler.HandleDisconnect(c.ID)
	}
}

// Subscribe adds connID to the room group.
func (h *Hub) Subscribe(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.conns[connID]; !live {
		return
	}
	if h.groups[roomID] == nil {
		h.groups[roomID] = make(map[string]struct{})
	}
	h.groups[roomID][connID] = struct{}{}
}

// Dissolve drops the room group. Connections stay open.
func (h *Hub) Dissolve(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, roomID)
}

// Deliver resolves each notification's recipients and queues the encoded
// message on their send buffers, in order.
func (h *Hub) Deliver(notes ...game.Notification) {
	for _, note := range notes {
		payload, err := json.Marshal(note.Message)
		if err != nil {
			log.Error().Err(err).Str("event", note.Message.Type).Msg("failed to marshal notification")
			continue
		}

		targets := h.recipients(note)
		for _, c := range targets {
			if !c.enqueue(payload) {
				log.Warn().
					Str("connection_id", c.ID).
					Str("event", note.Message.Type).
					Msg("connection send buffer full, closing connection")
				c.close()
			}
		}

		log.Debug().
			Str("event", note.Message.Type).
			Str("scope", note.Scope.String()).
			Str("target", note.Target).
			Int("connections", len(targets)).
			Msg("notification delivered")
	}
}

func (h *Hub) recipients(note game.Notification) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch note.Scope {
	case game.ScopeConnection:
		if c, ok := h.conns[note.Target]; ok {
			return []*Connection{c}
		}
		return nil
	case game.ScopeRoom, game.ScopeRoomExcept:
		members := h.groups[note.Target]
		targets := make([]*Connection, 0, len(members))
		for connID := range members {
			if note.Scope == game.ScopeRoomExcept && connID == note.Except {
				continue
			}
			if c, ok := h.conns[connID]; ok {
				targets = append(targets, c)
			}
		}
		return targets
	default:
		return nil
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Shutdown closes every live connection; their read pumps then unregister.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.close()
	}
	log.Info().Int("connections", len(conns)).Msg("websocket hub shut down")
}
