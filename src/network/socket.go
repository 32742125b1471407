package network

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"xapi-connector/src/models"
)

// MessageTerminator ends every message the xAPI socket server sends.
var MessageTerminator = []byte("\n\n")

var ErrMessageTooLarge = errors.New("message exceeds the configured maximum size")

// -----------------------------------------------------------------------------

// SocketTransport speaks the raw xAPI socket protocol: requests are written
// as-is, responses are read up to "\n\n".
type SocketTransport struct {
	address     string
	tlsConfig   *tls.Config // nil means plaintext
	dialTimeout time.Duration
	ioTimeout   time.Duration
	maxSize     int

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// -----------------------------------------------------------------------------

func NewSocketTransport(host string, port int, cfg *models.MXapiConfig) *SocketTransport {
	t := &SocketTransport{
		address:     net.JoinHostPort(host, strconv.Itoa(port)),
		dialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		ioTimeout:   time.Duration(cfg.RequestTimeout) * time.Second,
		maxSize:     cfg.MaxMessageSize,
	}
	if !cfg.Plaintext {
		t.tlsConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	return t
}

// -----------------------------------------------------------------------------

func (t *SocketTransport) Address() string {
	return t.address
}

// -----------------------------------------------------------------------------

func (t *SocketTransport) Open(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: t.dialTimeout, KeepAlive: 30 * time.Second}

	var conn net.Conn
	var err error
	if t.tlsConfig != nil {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: t.tlsConfig}
		conn, err = tlsDialer.DialContext(ctx, "tcp", t.address)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", t.address)
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.address, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.reader = bufio.NewReaderSize(conn, 64*1024)
	t.mu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------

func (t *SocketTransport) current() (net.Conn, *bufio.Reader, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil, nil, net.ErrClosed
	}
	return t.conn, t.reader, nil
}

// -----------------------------------------------------------------------------

func (t *SocketTransport) WriteMessage(ctx context.Context, msg []byte) error {
	conn, _, err := t.current()
	if err != nil {
		return err
	}

	if err := conn.SetWriteDeadline(deadlineFor(ctx, t.ioTimeout)); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetWriteDeadline(time.Unix(1, 0)) })
	defer stop()

	if _, err := conn.Write(msg); err != nil {
		return ctxErrOr(ctx, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ReadMessage returns the next non-empty message without its terminator.
func (t *SocketTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	conn, reader, err := t.current()
	if err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(deadlineFor(ctx, t.ioTimeout)); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Unix(1, 0)) })
	defer stop()

	for {
		msg, err := readFrame(reader, t.maxSize)
		if err != nil {
			return nil, ctxErrOr(ctx, err)
		}
		if len(msg) > 0 {
			return msg, nil
		}
	}
}

// -----------------------------------------------------------------------------

// readFrame reads up to and including "\n\n" and returns the trimmed body.
func readFrame(r *bufio.Reader, maxSize int) ([]byte, error) {
	var buf []byte
	for {
		line, err := r.ReadSlice('\n')
		buf = append(buf, line...)
		if maxSize > 0 && len(buf) > maxSize {
			return nil, ErrMessageTooLarge
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			return nil, err
		}
		if bytes.HasSuffix(buf, MessageTerminator) || bytes.Equal(buf, []byte("\n")) {
			return bytes.TrimSpace(buf), nil
		}
	}
}

// -----------------------------------------------------------------------------

func (t *SocketTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.reader = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

// -----------------------------------------------------------------------------
// Deadlines
// -----------------------------------------------------------------------------

// deadlineFor picks the earlier of the context deadline and now+fallback.
// A zero time means no deadline.
func deadlineFor(ctx context.Context, fallback time.Duration) time.Time {
	var d time.Time
	if fallback > 0 {
		d = time.Now().Add(fallback)
	}
	if cd, ok := ctx.Deadline(); ok && (d.IsZero() || cd.Before(d)) {
		d = cd
	}
	return d
}

// -----------------------------------------------------------------------------

func ctxErrOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	// The socket deadline can fire a moment before the context timer.
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return fmt.Errorf("%w (%v)", context.DeadlineExceeded, err)
	}
	return err
}
