package network

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"xapi-connector/src/helpers"
	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"
	"xapi-connector/src/models"

	"golang.org/x/time/rate"
)

// -----------------------------------------------------------------------------
// Connection state
// -----------------------------------------------------------------------------

type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	if s == Connected {
		return "Connected"
	}
	return "Disconnected"
}

// -----------------------------------------------------------------------------

// Connector owns one transport and enforces the connect/close state machine.
// Exchanges are serialized; a one-way Send may run alongside a Receive so
// that a streaming reader does not block subscriptions.
type Connector struct {
	transport interfaces.ITransport
	limiter   *rate.Limiter
	logger    *logger.Logger

	mu    sync.Mutex // guards state and generation
	state ConnectionState
	// generation counts successful Connect calls. A failure only drops the
	// connection it happened on.
	generation uint64

	exchangeMu sync.Mutex
	writeMu    sync.Mutex
	readMu     sync.Mutex
}

// -----------------------------------------------------------------------------

// NewConnector wraps a transport. Outgoing messages are spaced at least
// minInterval apart; zero disables the limit.
func NewConnector(transport interfaces.ITransport, minInterval time.Duration, log *logger.Logger) *Connector {
	if log == nil {
		log = logger.NewNopLogger()
	}
	c := &Connector{
		transport: transport,
		logger:    log,
		state:     Disconnected,
	}
	if minInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return c
}

// -----------------------------------------------------------------------------

func (c *Connector) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connector) IsConnected() bool {
	return c.State() == Connected
}

func (c *Connector) Address() string {
	return c.transport.Address()
}

// -----------------------------------------------------------------------------

// Connect opens the transport. It fails when already connected and leaves
// the existing connection untouched.
func (c *Connector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Connected {
		return helpers.NewSocketError(helpers.MsgConnectWithoutClose, nil)
	}
	if err := c.transport.Open(ctx); err != nil {
		return helpers.NewSocketError(fmt.Sprintf("failed to connect to %s", c.transport.Address()), err)
	}
	c.state = Connected
	c.generation++
	c.logger.Info("Connected to %s", c.transport.Address())
	return nil
}

// -----------------------------------------------------------------------------

// Close releases the transport. The state is Disconnected afterwards even if
// the transport reports an error while closing.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Disconnected {
		return helpers.NewSocketError(helpers.MsgCloseWithoutConnect, nil)
	}
	c.state = Disconnected
	if err := c.transport.Close(); err != nil {
		return helpers.NewSocketError(fmt.Sprintf("failed to close connection to %s", c.transport.Address()), err)
	}
	c.logger.Info("Disconnected from %s", c.transport.Address())
	return nil
}

// -----------------------------------------------------------------------------

// ensureConnected returns the generation of the open connection.
func (c *Connector) ensureConnected() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Connected {
		return 0, helpers.NewSocketError(helpers.MsgNotConnected, nil)
	}
	return c.generation, nil
}

// -----------------------------------------------------------------------------

// fail drops the connection after a transport error mid-exchange, unless it
// was closed and reopened while the exchange was running.
func (c *Connector) fail(gen uint64, op string, cause error) error {
	c.mu.Lock()
	if c.state == Connected && c.generation == gen {
		c.state = Disconnected
		_ = c.transport.Close()
	}
	c.mu.Unlock()

	c.logger.Warning("%s %s failed, connection dropped: %v", op, c.transport.Address(), cause)
	return helpers.NewSocketError(fmt.Sprintf("%s %s failed", op, c.transport.Address()), cause)
}

// -----------------------------------------------------------------------------

// SendAndReceive writes one request and blocks until its response has been
// read and parsed.
func (c *Connector) SendAndReceive(ctx context.Context, req models.MRequest) (models.MResponse, error) {
	c.exchangeMu.Lock()
	defer c.exchangeMu.Unlock()

	gen, err := c.ensureConnected()
	if err != nil {
		return models.MResponse{}, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return models.MResponse{}, fmt.Errorf("failed to encode %s request: %w", req.Command, err)
	}

	c.logger.Debug("-> %s", req.Command)
	if err := c.write(ctx, gen, payload); err != nil {
		return models.MResponse{}, err
	}

	raw, err := c.read(ctx, gen)
	if err != nil {
		return models.MResponse{}, err
	}

	var resp models.MResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.MResponse{}, c.fail(gen, "decoding response from", err)
	}
	c.logger.Debug("<- %s status=%t", req.Command, resp.Status)
	return resp, nil
}

// -----------------------------------------------------------------------------

// Send writes one message without waiting for an answer.
func (c *Connector) Send(ctx context.Context, v any) error {
	gen, err := c.ensureConnected()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	return c.write(ctx, gen, payload)
}

// -----------------------------------------------------------------------------

// Receive blocks for the next message.
func (c *Connector) Receive(ctx context.Context) ([]byte, error) {
	gen, err := c.ensureConnected()
	if err != nil {
		return nil, err
	}
	return c.read(ctx, gen)
}

// -----------------------------------------------------------------------------

func (c *Connector) write(ctx context.Context, gen uint64, payload []byte) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return helpers.NewSocketError("request cancelled before it was sent", err)
		}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.transport.WriteMessage(ctx, payload); err != nil {
		return c.fail(gen, "write to", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (c *Connector) read(ctx context.Context, gen uint64) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	raw, err := c.transport.ReadMessage(ctx)
	if err != nil {
		return nil, c.fail(gen, "read from", err)
	}
	return raw, nil
}
