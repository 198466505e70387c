package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/cradle/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	maxMessage = 4096
	sendBuffer = 16
)

// Client is one websocket connection and the session it drives.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	driver *session.Driver
}

func newClient(id string, conn *websocket.Conn, s *session.Session) *Client {
	c := &Client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		driver: session.NewDriver(s),
	}
	c.driver.AddObserver(c)
	return c
}

// OnFrame queues the frame for the browser. A client that is behind loses
// frames rather than stalling the simulation.
func (c *Client) OnFrame(f session.Frame) {
	collisionsTotal.Add(float64(len(f.Contacts)))
	c.queue(Envelope{Type: MsgFrame, Frame: &f}, true)
}

func (c *Client) queue(env Envelope, droppable bool) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("encode message failed", "session", c.id, "error", err)
		return
	}
	if env.Type == MsgFrame {
		frameBytes.Observe(float64(len(data)))
	}
	if !droppable {
		c.send <- data
		return
	}
	select {
	case c.send <- data:
	default:
		framesDropped.Inc()
	}
}

func (c *Client) sendError(err error) {
	select {
	case c.send <- mustJSON(Envelope{Type: MsgError, Error: err.Error()}):
	default:
		slog.Warn("error reply dropped", "session", c.id, "error", err)
	}
}

func mustJSON(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}

// serve runs the session until the connection closes.
func (c *Client) serve(ctx context.Context, fps int) {
	ctx, cancel := context.WithCancel(ctx)

	sim := make(chan struct{})
	go func() {
		defer close(sim)
		c.driver.RunLive(ctx, fps)
	}()

	writer := make(chan struct{})
	go func() {
		defer close(writer)
		c.writePump()
	}()

	c.readPump(ctx)

	cancel()
	<-sim
	close(c.send)
	<-writer
}

func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read failed", "session", c.id, "error", err)
			}
			return
		}

		ev, err := msg.Event(c.sendError)
		if err != nil {
			messagesTotal.WithLabelValues("invalid").Inc()
			c.sendError(err)
			continue
		}
		messagesTotal.WithLabelValues(msg.Type).Inc()

		if err := c.driver.Send(ctx, ev); err != nil {
			return
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
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Warn("websocket write failed", "session", c.id, "error", err)
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
