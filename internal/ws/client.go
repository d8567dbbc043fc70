// README: Per-connection gateway: read loop, write loop, heartbeat, teardown.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"routesync/internal/modules/planner"
	syncproto "routesync/internal/modules/sync"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 15 * time.Second
	pingPeriod     = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBufferSize = 32
)

// EventHandler applies one decoded inbound frame. A returned error means the
// event was rejected without state change and should be reported back to the
// originating connection only.
type EventHandler interface {
	Handle(ctx context.Context, raw []byte) error
}

// Client is one live connection. The hub writes into send; the write pump is
// the only goroutine touching the socket for writes.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	done     chan struct{}
	doneOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// enqueue hands payload to the write pump without blocking. Reports false
// when the buffer is full, which the hub treats as a dead connection.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// shutdown stops the write pump; the socket close then unblocks the read
// loop. Safe to call more than once and from any goroutine.
func (c *Client) shutdown() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Serve runs the gateway for one authenticated connection: registers with
// the hub, sends the initial planning snapshot, then pumps frames both ways
// until the transport closes. Either pump stopping tears the whole
// connection down and deregisters it.
func Serve(ctx context.Context, hub *Hub, handler EventHandler, snapshots *planner.Service, conn *websocket.Conn) {
	client := newClient(conn)
	hub.Register(client)
	defer func() {
		hub.Unregister(client)
		client.shutdown()
	}()

	// A fresh client should not wait for the next mutation to see state.
	if state, err := snapshots.Current(ctx); err != nil {
		log.Printf("ws: load initial snapshot: %v", err)
	} else if payload, err := json.Marshal(state); err != nil {
		log.Printf("ws: marshal initial snapshot: %v", err)
	} else {
		client.enqueue(payload)
	}

	go client.writePump()
	client.readPump(ctx, handler)
}

// readPump decodes inbound frames and hands them to the event handler.
// Handling failures are reported inline to this connection; only transport
// errors end the loop.
func (c *Client) readPump(ctx context.Context, handler EventHandler) {
	defer c.shutdown()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read: %v", err)
			}
			return
		}
		if err := handler.Handle(ctx, raw); err != nil {
			log.Printf("ws: event rejected: %v", err)
			if payload, merr := json.Marshal(syncproto.ErrorMessage{Error: err.Error()}); merr == nil {
				c.enqueue(payload)
			}
		}
	}
}

// writePump drains the send buffer to the socket and keeps the heartbeat
// going. When it returns it closes the socket, which stops the read pump.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
