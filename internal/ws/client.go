package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 1024
)

// Client wraps one live websocket connection. Outbound frames go through a
// buffered send channel drained by WritePump; inbound frames are handled by
// ReadPump on the same goroutine that owns the connection. The send channel
// is never closed, so a broadcast racing an unregister cannot panic; done
// signals WritePump to stop instead.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	session Session
}

func NewClient(hub *Hub, conn *websocket.Conn, session Session) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 64),
		done:    make(chan struct{}),
		session: session,
	}
}

func (c *Client) Session() Session {
	return c.session
}

// inboundMessage is the closed set of frames a client may push.
type inboundMessage struct {
	Action    string  `json:"action"` // join_order, leave_order, location_update
	OrderID   uint    `json:"order_id,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// ReadPump consumes inbound frames until the connection dies, then
// unregisters the client. A connection that misses the pong deadline is
// treated as disconnected.
func (c *Client) ReadPump() {
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
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: unexpected close for user %d: %v", c.session.UserID, err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ws: bad frame from user %d: %v", c.session.UserID, err)
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg inboundMessage) {
	switch msg.Action {
	case "join_order":
		if msg.OrderID != 0 {
			c.hub.JoinGroup(c, OrderGroup(msg.OrderID))
		}
	case "leave_order":
		if msg.OrderID != 0 {
			c.hub.LeaveGroup(c, OrderGroup(msg.OrderID))
		}
	case "location_update":
		if c.hub.locations == nil {
			return
		}
		if err := c.hub.locations.UpdateEmployeeLocationByUser(c.session.UserID, msg.Latitude, msg.Longitude); err != nil {
			log.Printf("ws: location update for user %d failed: %v", c.session.UserID, err)
		}
	default:
		log.Printf("ws: unknown action %q from user %d", msg.Action, c.session.UserID)
	}
}

// WritePump drains the send channel onto the connection and keeps the
// connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
