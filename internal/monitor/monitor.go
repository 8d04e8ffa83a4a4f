// Package monitor exposes live transfer progress over a WebSocket endpoint.
// Dashboards or scripts subscribe to ws://<addr>/ws and receive one JSON
// event per progress update. The monitor is an observer; it never influences
// a transfer.
package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nettf/nettf/pkg/logger"
	"github.com/nettf/nettf/pkg/progress"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Subscribers are trusted tools on the operator's own machines.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// event is the wire form of a progress update.
type event struct {
	File        string  `json:"file"`
	Transferred uint64  `json:"transferred"`
	Total       uint64  `json:"total"`
	Percent     float64 `json:"percent"`
	SpeedBps    float64 `json:"speed_bps"`
	ChunkSize   int     `json:"chunk_size"`
	ElapsedMs   int64   `json:"elapsed_ms"`
	Done        bool    `json:"done"`
}

type client struct {
	conn *websocket.Conn
	send chan event
}

// Hub fans progress events out to every connected subscriber. A subscriber
// that cannot keep up is dropped rather than allowed to stall the others.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	srv     *http.Server
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Serve starts the monitor endpoint on addr. It returns once the listener
// fails or the hub is shut down.
func (h *Hub) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleSubscribe)

	h.mu.Lock()
	h.srv = &http.Server{Addr: addr, Handler: mux}
	srv := h.srv
	h.mu.Unlock()

	logger.Log.Info("monitor listening", "addr", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown closes the endpoint and every subscriber connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	srv := h.srv
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	if srv != nil {
		srv.Close()
	}
}

func (h *Hub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("monitor upgrade failed", "peer", r.RemoteAddr, "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan event, clientSendSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logger.Log.Info("monitor subscriber connected", "peer", r.RemoteAddr, "subscribers", n)

	go h.writePump(c)
	go h.readPump(c)
}

// Progress adapts the hub into the transfer engines' progress callback.
func (h *Hub) Progress() progress.Func {
	return func(e progress.Event) {
		h.broadcast(event{
			File:        e.File,
			Transferred: e.Transferred,
			Total:       e.Total,
			Percent:     e.Percent(),
			SpeedBps:    e.Speed,
			ChunkSize:   e.ChunkSize,
			ElapsedMs:   e.Elapsed.Milliseconds(),
			Done:        e.Done,
		})
	}
}

func (h *Hub) broadcast(e event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			// Slow subscriber; writePump will notice the closed channel.
			go h.drop(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for e := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(e); err != nil {
			h.drop(c)
			return
		}
	}
}

// readPump exists to observe the close handshake; subscribers send nothing.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}
