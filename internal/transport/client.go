package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one connected rendering client. All writes go through the
// outbound queue; the write pump is the only goroutine touching the
// connection for writes.
type Client struct {
	conn *websocket.Conn
	srv  *Server

	out       chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func newClient(conn *websocket.Conn, srv *Server) *Client {
	return &Client{
		conn: conn,
		srv:  srv,
		out:  make(chan []byte, srv.queueSize),
		done: make(chan struct{}),
	}
}

// send queues a pre-marshalled frame, dropping it if the client is slow.
func (c *Client) send(data []byte) {
	select {
	case c.out <- data:
	default:
	}
}

// Send marshals and queues a frame for this client only.
func (c *Client) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.srv.log.Error("marshal client frame", zap.Error(err))
		return
	}
	c.send(data)
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) writePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.close()
		c.srv.removeClient(c)
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.srv.log.Warn("bad command", zap.Error(err))
			continue
		}
		// Queue for the simulation goroutine; drop when it is behind.
		select {
		case c.srv.commands <- InboundCommand{Client: c, Cmd: cmd}:
		default:
			c.srv.log.Warn("command queue full, dropping command",
				zap.String("type", cmd.Type))
		}
	}
}
