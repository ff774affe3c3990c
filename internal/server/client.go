package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16384

	// Outbound buffer per connection.
	sendBuffer = 256
)

var ErrConnectionClosed = errors.New("connection closed")

// Client is one WebSocket connection. Its id doubles as the player id for
// any seat it takes.
type Client struct {
	id     string
	name   string
	conn   *websocket.Conn
	send   chan *Envelope
	server *Server
	logger *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu     sync.RWMutex
	roomID string
}

func newClient(id string, conn *websocket.Conn, server *Server, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     id,
		conn:   conn,
		send:   make(chan *Envelope, sendBuffer),
		server: server,
		logger: logger.WithPrefix("conn").With("id", id),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RoomID returns the room the client is attached to, if any.
func (c *Client) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

func (c *Client) setRoomID(id string) {
	c.mu.Lock()
	c.roomID = id
	c.mu.Unlock()
}

// Send queues an envelope for delivery. A full buffer drops the connection
// rather than blocking the room.
func (c *Client) Send(env *Envelope) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- env:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("send buffer full, dropping connection")
		c.Close()
		return ErrConnectionClosed
	}
}

// SendEvent marshals and queues an event.
func (c *Client) SendEvent(event string, data any) {
	env, err := NewEnvelope(event, data)
	if err != nil {
		c.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}
	_ = c.Send(env)
}

// SendError emits the generic error event.
func (c *Client) SendError(message string) {
	c.SendEvent(EvtError, ErrorData{Message: message})
}

// Close tears the connection down once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		_ = c.conn.Close()
	})
}

// readPump consumes inbound frames and routes them until the connection
// dies, then reports the disconnect.
func (c *Client) readPump() {
	defer func() {
		c.server.handleDisconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", "error", err)
			}
			return
		}
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			c.SendError("malformed message")
			continue
		}
		c.server.route(c, &env)
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
