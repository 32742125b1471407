package network

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"xapi-connector/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------

// WebSocketTransport carries one xAPI message per text frame.
type WebSocketTransport struct {
	url         string
	dialTimeout time.Duration
	ioTimeout   time.Duration
	maxSize     int

	mu   sync.Mutex
	conn *websocket.Conn
}

// -----------------------------------------------------------------------------

func NewWebSocketTransport(url string, cfg *models.MXapiConfig) *WebSocketTransport {
	return &WebSocketTransport{
		url:         url,
		dialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		ioTimeout:   time.Duration(cfg.RequestTimeout) * time.Second,
		maxSize:     cfg.MaxMessageSize,
	}
}

// -----------------------------------------------------------------------------

func (t *WebSocketTransport) Address() string {
	return t.url
}

// -----------------------------------------------------------------------------

func (t *WebSocketTransport) Open(ctx context.Context) error {
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: t.dialTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %w (HTTP %d)", t.url, err, resp.StatusCode)
		}
		return fmt.Errorf("dial %s: %w", t.url, err)
	}
	if t.maxSize > 0 {
		conn.SetReadLimit(int64(t.maxSize))
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------

func (t *WebSocketTransport) current() (*websocket.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil, net.ErrClosed
	}
	return t.conn, nil
}

// -----------------------------------------------------------------------------

func (t *WebSocketTransport) WriteMessage(ctx context.Context, msg []byte) error {
	conn, err := t.current()
	if err != nil {
		return err
	}

	if err := conn.SetWriteDeadline(deadlineFor(ctx, t.ioTimeout)); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.UnderlyingConn().SetWriteDeadline(time.Unix(1, 0)) })
	defer stop()

	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return ctxErrOr(ctx, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (t *WebSocketTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	conn, err := t.current()
	if err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(deadlineFor(ctx, t.ioTimeout)); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.UnderlyingConn().SetReadDeadline(time.Unix(1, 0)) })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, ctxErrOr(ctx, err)
		}
		if msg := bytes.TrimSpace(data); len(msg) > 0 {
			return msg, nil
		}
	}
}

// -----------------------------------------------------------------------------

func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return conn.Close()
}
