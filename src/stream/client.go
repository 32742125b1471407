package stream

import (
	"context"
	"encoding/json"
	"time"

	"xapi-connector/src/decoder"
	"xapi-connector/src/helpers"
	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"
	"xapi-connector/src/models"
	"xapi-connector/src/network"
	"xapi-connector/src/xapi"
)

// -----------------------------------------------------------------------------

// Client is the second connection of an account. Subscriptions are signed
// with the streamSessionId of the command client it was created from, so that
// client must stay logged in while streaming.
type Client struct {
	connector *network.Connector
	main      *xapi.Client
	logger    *logger.Logger
}

func NewClient(main *xapi.Client, transport interfaces.ITransport, minInterval time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		connector: network.NewConnector(transport, minInterval, log),
		main:      main,
		logger:    log,
	}
}

// NewClientFromConfig dials the stream endpoint of cfg.
func NewClientFromConfig(main *xapi.Client, cfg *models.MXapiConfig, log *logger.Logger) (*Client, error) {
	transport, err := network.NewTransport(cfg, true)
	if err != nil {
		return nil, err
	}
	return NewClient(main, transport, time.Duration(cfg.MinRequestIntervalMs)*time.Millisecond, log), nil
}

// -----------------------------------------------------------------------------

func (s *Client) Connect(ctx context.Context) error {
	return s.connector.Connect(ctx)
}

// Close is a no-op when the connection already went away.
func (s *Client) Close() error {
	if !s.connector.IsConnected() {
		return nil
	}
	return s.connector.Close()
}

func (s *Client) IsConnected() bool {
	return s.connector.IsConnected()
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

func (s *Client) send(ctx context.Context, cmd xapi.Command, values ...any) error {
	if !s.connector.IsConnected() {
		return helpers.NewSocketError(helpers.MsgNotConnected, nil)
	}
	req, err := s.main.StreamRequest(cmd, values...)
	if err != nil {
		return err
	}
	s.logger.Debug("stream -> %s", cmd.Name)
	return s.connector.Send(ctx, req)
}

// SubscribeTickPrices streams quotes for symbol. minArrivalTime (ms) of 0
// and maxLevel below 0 leave the server defaults in place.
func (s *Client) SubscribeTickPrices(ctx context.Context, symbol string, minArrivalTime, maxLevel int) error {
	var arrival, level any
	if minArrivalTime > 0 {
		arrival = minArrivalTime
	}
	if maxLevel >= 0 {
		level = maxLevel
	}
	return s.send(ctx, xapi.StreamGetTickPrices, symbol, arrival, level)
}

func (s *Client) UnsubscribeTickPrices(ctx context.Context, symbol string) error {
	return s.send(ctx, xapi.StreamStopTickPrices, symbol)
}

func (s *Client) SubscribeCandles(ctx context.Context, symbol string) error {
	return s.send(ctx, xapi.StreamGetCandles, symbol)
}

func (s *Client) UnsubscribeCandles(ctx context.Context, symbol string) error {
	return s.send(ctx, xapi.StreamStopCandles, symbol)
}

func (s *Client) SubscribeBalance(ctx context.Context) error {
	return s.send(ctx, xapi.StreamGetBalance)
}

func (s *Client) UnsubscribeBalance(ctx context.Context) error {
	return s.send(ctx, xapi.StreamStopBalance)
}

func (s *Client) SubscribeKeepAlive(ctx context.Context) error {
	return s.send(ctx, xapi.StreamGetKeepAlive)
}

func (s *Client) UnsubscribeKeepAlive(ctx context.Context) error {
	return s.send(ctx, xapi.StreamStopKeepAlive)
}

func (s *Client) SubscribeNews(ctx context.Context) error {
	return s.send(ctx, xapi.StreamGetNews)
}

func (s *Client) UnsubscribeNews(ctx context.Context) error {
	return s.send(ctx, xapi.StreamStopNews)
}

func (s *Client) SubscribeProfits(ctx context.Context) error {
	return s.send(ctx, xapi.StreamGetProfits)
}

func (s *Client) UnsubscribeProfits(ctx context.Context) error {
	return s.send(ctx, xapi.StreamStopProfits)
}

func (s *Client) SubscribeTradeStatus(ctx context.Context) error {
	return s.send(ctx, xapi.StreamGetTradeStatus)
}

func (s *Client) UnsubscribeTradeStatus(ctx context.Context) error {
	return s.send(ctx, xapi.StreamStopTradeStatus)
}

func (s *Client) SubscribeTrades(ctx context.Context) error {
	return s.send(ctx, xapi.StreamGetTrades)
}

func (s *Client) UnsubscribeTrades(ctx context.Context) error {
	return s.send(ctx, xapi.StreamStopTrades)
}

// Ping keeps the stream connection from being dropped as idle.
func (s *Client) Ping(ctx context.Context) error {
	return s.send(ctx, xapi.StreamPing)
}

// -----------------------------------------------------------------------------
// Listening
// -----------------------------------------------------------------------------

// Handlers receives decoded stream messages. Nil callbacks are skipped
// without decoding.
type Handlers struct {
	OnTick        func(models.MStreamTick)
	OnCandle      func(models.MStreamCandle)
	OnBalance     func(models.MStreamBalance)
	OnKeepAlive   func(models.MStreamKeepAlive)
	OnNews        func(models.MStreamNews)
	OnProfit      func(models.MStreamProfit)
	OnTradeStatus func(models.MStreamTradeStatus)
	OnTrade       func(models.MStreamTrade)
	OnError       func(error)
}

// Listen reads messages until ctx is done or the connection fails. Messages
// with an unknown command are ignored. A message that cannot be decoded is
// reported to OnError and listening goes on.
func (s *Client) Listen(ctx context.Context, h Handlers) error {
	for {
		raw, err := s.connector.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var msg models.MStreamMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.reportError(helpers.NewDecodeError("MStreamMessage", "", err.Error()))
			continue
		}
		if err := h.dispatch(msg); err != nil {
			h.reportError(err)
		}
	}
}

func (h Handlers) reportError(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (h Handlers) dispatch(msg models.MStreamMessage) error {
	switch msg.Command {
	case models.StreamTickPrices:
		return deliver(msg.Command, msg.Data, h.OnTick)
	case models.StreamCandle:
		return deliver(msg.Command, msg.Data, h.OnCandle)
	case models.StreamBalance:
		return deliver(msg.Command, msg.Data, h.OnBalance)
	case models.StreamKeepAlive:
		return deliver(msg.Command, msg.Data, h.OnKeepAlive)
	case models.StreamNews:
		return deliver(msg.Command, msg.Data, h.OnNews)
	case models.StreamProfit:
		return deliver(msg.Command, msg.Data, h.OnProfit)
	case models.StreamTradeStatus:
		return deliver(msg.Command, msg.Data, h.OnTradeStatus)
	case models.StreamTrade:
		return deliver(msg.Command, msg.Data, h.OnTrade)
	}
	return nil
}

func deliver[T any](command string, data json.RawMessage, fn func(T)) error {
	if fn == nil {
		return nil
	}
	p, err := decoder.Parse(data)
	if err != nil {
		return helpers.NewDecodeError(command, "", err.Error())
	}
	rec, err := decoder.One[T](p)
	if err != nil {
		return err
	}
	fn(rec)
	return nil
}
