// Package stream broadcasts live step statistics of a running network to
// WebSocket clients.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rrtucci/ising-dbnet/network"
)

// Connection timing and limits.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // must stay below pongWait
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Event types for WebSocket messages.
const (
	EventTypeStep  = "step"
	EventTypeDone  = "done"
	EventTypePing  = "ping"
	EventTypePong  = "pong"
	EventTypeError = "error"
)

// Message is the WebSocket message envelope.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// DoneData announces the end of a run.
type DoneData struct {
	RunID    string `json:"run_id,omitempty"`
	Reason   string `json:"reason"`
	StepsRun int    `json:"steps_run"`
}

// Any origin may subscribe.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Client is one WebSocket connection. Its outbox is written by the hub
// (broadcasts) and by the client's own reader (replies), and closed exactly
// once by the hub; mu serializes the three.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	outbox chan []byte
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		outbox: make(chan []byte, sendBufferSize),
	}
}

// offer queues data without blocking. It reports false when the outbox is
// full or already closed.
func (c *Client) offer(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.outbox <- data:
		return true
	default:
		return false
	}
}

// shut closes the outbox; later calls are no-ops.
func (c *Client) shut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.outbox)
	}
}

// listen reads client frames until the connection fails, then leaves the hub.
func (c *Client) listen() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func() { _ = c.conn.SetReadDeadline(time.Now().Add(pongWait)) }
	extend()
	c.conn.SetPongHandler(func(string) error {
		extend()
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}
		c.handleMessage(frame)
	}
}

func (c *Client) handleMessage(frame []byte) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.reply(Message{Type: EventTypeError, Data: map[string]string{"code": "invalid_json"}})
		return
	}
	switch msg.Type {
	case EventTypePing:
		c.reply(Message{Type: EventTypePong})
	default:
		log.Printf("[ws] unknown message type: %s", msg.Type)
	}
}

// reply queues msg for this client only. It is dropped if the outbox is
// full or the hub has already let the client go.
func (c *Client) reply(msg Message) {
	data, err := encode(&msg)
	if err != nil {
		return
	}
	if !c.offer(data) {
		log.Printf("[ws] reply %s dropped", msg.Type)
	}
}

// deliver drains the outbox onto the connection and keeps it alive with
// pings. A closed outbox ends the connection with a close frame.
func (c *Client) deliver() {
	keepalive := time.NewTicker(pingPeriod)
	defer func() {
		keepalive.Stop()
		_ = c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(kind, data)
	}
	for {
		select {
		case data, ok := <-c.outbox:
			if !ok {
				_ = write(websocket.CloseMessage, []byte{})
				return
			}
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-keepalive.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// encode stamps msg with the current time if it has none and marshals it.
func encode(msg *Message) ([]byte, error) {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return json.Marshal(msg)
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// mu protects clients
	mu sync.RWMutex

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub; call Run in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				c.shut()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client connected (total: %d)", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				c.shut()
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[ws] client disconnected (total: %d)", n)

		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if !c.offer(data) {
					log.Printf("[ws] dropping slow client")
					delete(h.clients, c)
					c.shut()
				}
			}
			h.mu.Unlock()
		}
	}
}

// leave unregisters c unless the hub has already stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Stop ends Run and closes every client. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client; it is dropped if the queue is full.
func (h *Hub) Broadcast(msg *Message) error {
	data, err := encode(msg)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("[ws] broadcast queue full, dropping %s", msg.Type)
	}
	return nil
}

// BroadcastStep sends a step event.
func (h *Hub) BroadcastStep(s network.StepStats) error {
	return h.Broadcast(&Message{Type: EventTypeStep, Data: s})
}

// BroadcastDone sends the end-of-run event.
func (h *Hub) BroadcastDone(d DoneData) error {
	return h.Broadcast(&Message{Type: EventTypeDone, Data: d})
}

// OnStep adapts the hub to network.WithOnStep.
func (h *Hub) OnStep() func(network.StepStats) {
	return func(s network.StepStats) {
		if err := h.BroadcastStep(s); err != nil {
			log.Printf("[ws] step %d: %v", s.Step, err)
		}
	}
}

// Handler upgrades HTTP requests to WebSocket clients of a hub.
type Handler struct {
	hub *Hub
}

// NewHandler creates a WebSocket handler for hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	client := newClient(h.hub, conn)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.deliver()
	go client.listen()
}
