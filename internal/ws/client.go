package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// Client wraps one websocket connection and pumps messages between the
// socket and the hub. Outbound sends go through a buffered channel; a full
// buffer drops the message rather than blocking a broadcast.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

// NewClient creates a client for an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Start registers the client and launches its read/write pumps
func (c *Client) Start() {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump()
}

// ID identifies the connection for logs
func (c *Client) ID() string {
	return c.conn.RemoteAddr().String()
}

// Send queues a message. Never blocks; drops when the buffer is full.
func (c *Client) Send(b []byte) {
	select {
	case c.send <- b:
	default:
		// Slow consumer; fire-and-forget semantics allow the drop
	}
}

// Close shuts the outbound channel; writePump closes the socket
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Unexpected close", slog.String("client", c.ID()), slog.Any("error", err))
			}
			return
		}

		var msg controlMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Debug("Ignoring malformed control message", slog.String("client", c.ID()))
			continue
		}

		switch msg.Type {
		case EventSubscribePrices:
			c.hub.Subscribe(c)
		case EventUnsubscribePrices:
			c.hub.Unsubscribe(c)
		case EventPing:
			// Application-level heartbeat; carries no state
			if pong, err := json.Marshal(pongMessage{Type: TypePong, Timestamp: time.Now()}); err == nil {
				c.Send(pong)
			}
		default:
			slog.Debug("Unknown control event", slog.String("type", msg.Type), slog.String("client", c.ID()))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
