package xapi

import (
	"context"
	"time"

	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"
	"xapi-connector/src/models"
	"xapi-connector/src/network"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------

// Client is one logical connection to the xAPI command server together with
// its session. Clients share nothing; create one per account.
type Client struct {
	connector *network.Connector
	session   *Session
	observer  interfaces.ICommandObserver
	logger    *logger.Logger
	newTag    func() string
}

type Option func(*Client)

// WithObserver reports every exchange to o, e.g. for metrics.
func WithObserver(o interfaces.ICommandObserver) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTagGenerator replaces the uuid customTag source.
func WithTagGenerator(gen func() string) Option {
	return func(c *Client) { c.newTag = gen }
}

// -----------------------------------------------------------------------------

// NewClient wraps a transport. minInterval spaces outgoing commands.
func NewClient(transport interfaces.ITransport, minInterval time.Duration, opts ...Option) *Client {
	c := &Client{
		session: &Session{},
		logger:  logger.NewNopLogger(),
		newTag:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.connector = network.NewConnector(transport, minInterval, c.logger)
	return c
}

// -----------------------------------------------------------------------------

// NewClientFromConfig builds the configured transport for the command
// endpoint.
func NewClientFromConfig(cfg *models.MXapiConfig, opts ...Option) (*Client, error) {
	transport, err := network.NewTransport(cfg, false)
	if err != nil {
		return nil, err
	}
	return NewClient(transport, time.Duration(cfg.MinRequestIntervalMs)*time.Millisecond, opts...), nil
}

// -----------------------------------------------------------------------------
// Connection lifecycle
// -----------------------------------------------------------------------------

func (c *Client) Connect(ctx context.Context) error {
	return c.connector.Connect(ctx)
}

// Close drops the session and the connection.
func (c *Client) Close() error {
	c.session.Clear()
	return c.connector.Close()
}

func (c *Client) IsConnected() bool {
	return c.connector.IsConnected()
}

func (c *Client) IsLoggedIn() bool {
	return c.connector.IsConnected() && c.session.IsAuthenticated()
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) Address() string {
	return c.connector.Address()
}

// -----------------------------------------------------------------------------

// WithConnection connects, runs fn and closes again on every exit path,
// panics included. The close is skipped when the connection is already gone
// (fn closed it, or a transport failure dropped it). An error from fn always
// wins over an error from the close.
func (c *Client) WithConnection(ctx context.Context, fn func(ctx context.Context, c *Client) error) (err error) {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if !c.connector.IsConnected() {
			c.session.Clear()
			return
		}
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(ctx, c)
}
