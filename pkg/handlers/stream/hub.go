// Package stream pushes bus events to websocket clients.
package stream

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/events"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/metrics"
)

const (
	clientSendBuf = 64
	writeDeadline = 5 * time.Second
	pongWait      = 60 * time.Second
	pingInterval  = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type client struct {
	conn  *websocket.Conn
	types map[events.EventType]bool // nil means every type
	send  chan []byte
	done  chan struct{}
}

func (c *client) wants(t events.EventType) bool {
	return c.types == nil || c.types[t]
}

// Hub fans bus events out to connected clients. The first client to connect
// focuses the view and the last one to leave blurs it.
type Hub struct {
	logger  *logger.Logger
	onFocus func()
	onBlur  func()

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub subscribes to every event on bus. onFocus and onBlur may be nil.
func NewHub(bus *events.Bus, log *logger.Logger, onFocus, onBlur func()) *Hub {
	if onFocus == nil {
		onFocus = func() {}
	}
	if onBlur == nil {
		onBlur = func() {}
	}
	h := &Hub{
		logger:  log,
		onFocus: onFocus,
		onBlur:  onBlur,
		clients: make(map[*client]struct{}),
	}
	bus.SubscribeAll(h.forward)
	return h
}

// forward runs on the publisher's goroutine and never blocks on a client
func (h *Hub) forward(evt events.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if !c.wants(evt.Type) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn().Str("event_type", string(evt.Type)).Msg("Dropping event for slow stream client")
		}
	}
	return nil
}

// ServeHTTP upgrades the request. ?types=countdown_tick,notify limits the
// event types sent.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Stream upgrade failed")
		return
	}

	c := &client{
		conn:  conn,
		types: parseTypes(r.URL.Query().Get("types")),
		send:  make(chan []byte, clientSendBuf),
		done:  make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	first := len(h.clients) == 1
	h.mu.Unlock()

	metrics.StreamClients.Inc()
	if first {
		h.onFocus()
	}

	go h.writePump(c)
	go h.readPump(c)
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		h.remove(c)
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only handles pongs and close frames
func (h *Hub) readPump(c *client) {
	defer close(c.done)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	last := ok && len(h.clients) == 0
	h.mu.Unlock()

	if !ok {
		return
	}
	metrics.StreamClients.Dec()
	if last {
		h.onBlur()
	}
}

func parseTypes(raw string) map[events.EventType]bool {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	types := make(map[events.EventType]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[events.EventType(t)] = true
		}
	}
	return types
}
