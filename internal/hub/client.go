package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Drawing payloads carry stroke
	// data and an optional base64 image, so this is generous.
	maxMessageSize = 1 << 20
)

// Client is one authenticated WebSocket connection. The identity attached
// by the gate is immutable for the connection's lifetime.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	user domain.PublicUser

	// send buffers outbound frames; the hub enqueues, WritePump drains.
	// sendMu orders Enqueue against closeSend so the hub never sends on
	// a closed channel.
	send   chan []byte
	sendMu sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, user domain.PublicUser) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		user: user,
		send: make(chan []byte, 256),
	}
}

func (c *Client) UserID() string   { return c.user.ID }
func (c *Client) Username() string { return c.user.Username }

// Enqueue implements session.Conn: a non-blocking hand-off to the send
// queue. False means the client is shut down or the queue is full and the
// frame was dropped.
func (c *Client) Enqueue(message []byte) bool {
	if message == nil {
		return false
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend shuts down the send queue. Idempotent, and safe to call while
// other goroutines Enqueue; they see the closed flag and drop the frame.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run starts the connection's read and write pumps.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump reads inbound frames and hands them to the hub one at a time,
// which keeps a single connection's events ordered. It exits on any read
// error and requests unregistration, which triggers the full disconnect
// handling.
func (c *Client) ReadPump() {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.user.ID, "username": c.user.Username})

	defer func() {
		select {
		case c.hub.messageChan <- HubMessage{Type: messageUnregister, Client: c}:
		case <-time.After(1 * time.Second):
			logCtx.Warn("Timeout sending unregister message to hub channel")
		}
		c.conn.Close()
		logCtx.Info("ReadPump exited, unregistering client")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed")
			}
			break
		}
		if messageType != websocket.TextMessage {
			logCtx.Debugf("Ignoring non-text message type: %d", messageType)
			continue
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil || envelope.Event == "" {
			c.Enqueue(encodeEvent(EventError, ErrorPayload{Message: "Invalid message format"}))
			continue
		}

		// Handled inline so a connection's events are processed in the
		// order they arrived. A join committed here is visible before
		// the pet create that followed it on the same socket.
		c.hub.handleEvent(c, envelope)
	}
}

// WritePump pumps frames from the send queue to the connection and keeps
// the connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.user.ID, "username": c.user.Username})

	defer func() {
		ticker.Stop()
		c.conn.Close()
		logCtx.Debug("WritePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the send channel during unregistration.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logCtx.WithError(err).Warn("Failed to write message to websocket")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logCtx.Debug("Failed to send ping, closing")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})
		}
	}
}
