package server

import (
	"sync"
	"time"

	"xapi-connector/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one WebSocket consumer. New clients receive every symbol until
// they subscribe to a list.
type Client struct {
	hub  *GatewayServer
	conn *websocket.Conn
	send chan interface{}

	mu      sync.Mutex
	all     bool
	symbols map[string]struct{}
}

func newClient(hub *GatewayServer, conn *websocket.Conn) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan interface{}, 256),
		all:     true,
		symbols: make(map[string]struct{}),
	}
}

// -----------------------------------------------------------------------------
// Symbol filter
// -----------------------------------------------------------------------------

// subscribe with no symbols restores the unfiltered feed.
func (c *Client) subscribe(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(symbols) == 0 {
		c.all = true
		c.symbols = make(map[string]struct{})
		return
	}
	c.all = false
	for _, sym := range symbols {
		c.symbols[sym] = struct{}{}
	}
}

// unsubscribe with no symbols mutes the client.
func (c *Client) unsubscribe(symbols []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(symbols) == 0 {
		c.all = false
		c.symbols = make(map[string]struct{})
		return
	}
	for _, sym := range symbols {
		delete(c.symbols, sym)
	}
}

func (c *Client) pick(ticks map[string]models.MTick) map[string]models.MTick {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]models.MTick)
	for sym, t := range ticks {
		if _, ok := c.symbols[sym]; c.all || ok {
			out[sym] = t
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// readPump - handles incoming messages from client
// Act as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.Logger.Debug("Client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends messages to client
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
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
