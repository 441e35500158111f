package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client represents a websocket connection bound to a subject. Trainer
// connections additionally receive every subject's notices (firehose).
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	subjectID string
	firehose  bool
}

// Hub manages active clients and delivers event notices.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	bySubject  map[string]map[*Client]bool
	watchers   map[*Client]bool
}

// NewHub creates and starts a new Hub loop.
func NewHub() *Hub {
	h := &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		bySubject:  make(map[string]map[*Client]bool),
		watchers:   make(map[*Client]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			if c.firehose {
				h.watchers[c] = true
				continue
			}
			set, ok := h.bySubject[c.subjectID]
			if !ok {
				set = make(map[*Client]bool)
				h.bySubject[c.subjectID] = set
			}
			set[c] = true
		case c := <-h.unregister:
			if c.firehose {
				if _, exists := h.watchers[c]; exists {
					delete(h.watchers, c)
					close(c.send)
				}
				continue
			}
			if set, ok := h.bySubject[c.subjectID]; ok {
				if _, exists := set[c]; exists {
					delete(set, c)
					close(c.send)
					if len(set) == 0 {
						delete(h.bySubject, c.subjectID)
					}
				}
			}
		}
	}
}

// NotifySubject sends a payload to the subject's own connections and to
// every firehose watcher.
func (h *Hub) NotifySubject(subjectID string, payload []byte) {
	if h == nil {
		return
	}
	if set, ok := h.bySubject[subjectID]; ok {
		for c := range set {
			h.deliver(set, c, payload)
		}
		if len(set) == 0 {
			delete(h.bySubject, subjectID)
		}
	}
	for c := range h.watchers {
		h.deliver(h.watchers, c, payload)
	}
}

func (h *Hub) deliver(set map[*Client]bool, c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		// Backpressure: drop and disconnect slow clients
		close(c.send)
		delete(set, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and registers the client. Authentication
// happens upstream; the caller must have set subjectId (and role) in the
// gin context.
func ServeWS(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		subjectID := c.GetString("subjectId")
		if subjectID == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "err", err)
			return
		}
		client := &Client{
			hub:       h,
			conn:      conn,
			send:      make(chan []byte, 256),
			subjectID: subjectID,
			firehose:  c.GetString("role") == "trainer",
		}
		h.register <- client

		// Reader goroutine
		go func() {
			defer func() {
				h.unregister <- client
				_ = conn.Close()
			}()
			conn.SetReadLimit(1024)
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()

		// Writer loop (same goroutine)
		for msg := range client.send {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}
}
