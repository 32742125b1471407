package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"xapi-connector/src/helpers"
	"xapi-connector/src/models"
	"xapi-connector/src/testutil"
	"xapi-connector/src/xapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStream(t *testing.T) (*Client, *testutil.FakeXapi, *xapi.Client) {
	t.Helper()
	main := xapi.NewClient(testutil.NewFakeXapi(), 0)
	require.NoError(t, main.Connect(context.Background()))
	_, err := main.Login(context.Background(), "12345", "secret", "")
	require.NoError(t, err)

	fake := testutil.NewFakeStream()
	s := NewClient(main, fake, 0, nil)
	require.NoError(t, s.Connect(context.Background()))
	return s, fake, main
}

func TestSubscribeSendsFlatRequestWithSession(t *testing.T) {
	s, fake, _ := newStream(t)
	require.NoError(t, s.SubscribeTickPrices(context.Background(), "EURUSD", 0, 0))

	req, ok := fake.LastRequest("getTickPrices")
	require.True(t, ok)
	assert.Equal(t, testutil.FakeStreamSessionID, req.StreamSessionID)
	assert.Nil(t, req.Arguments)
	assert.Empty(t, req.CustomTag)
	assert.Equal(t, "EURUSD", req.Raw["symbol"])
	assert.Equal(t, float64(0), req.Raw["maxLevel"])
	assert.NotContains(t, req.Raw, "minArrivalTime")
}

func TestSubscriptionCommands(t *testing.T) {
	s, fake, _ := newStream(t)
	ctx := context.Background()

	require.NoError(t, s.SubscribeCandles(ctx, "EURUSD"))
	require.NoError(t, s.SubscribeBalance(ctx))
	require.NoError(t, s.SubscribeKeepAlive(ctx))
	require.NoError(t, s.SubscribeNews(ctx))
	require.NoError(t, s.SubscribeProfits(ctx))
	require.NoError(t, s.SubscribeTradeStatus(ctx))
	require.NoError(t, s.SubscribeTrades(ctx))
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.UnsubscribeTickPrices(ctx, "EURUSD"))
	require.NoError(t, s.UnsubscribeCandles(ctx, "EURUSD"))
	require.NoError(t, s.UnsubscribeBalance(ctx))
	require.NoError(t, s.UnsubscribeKeepAlive(ctx))
	require.NoError(t, s.UnsubscribeNews(ctx))
	require.NoError(t, s.UnsubscribeProfits(ctx))
	require.NoError(t, s.UnsubscribeTradeStatus(ctx))
	require.NoError(t, s.UnsubscribeTrades(ctx))

	var names []string
	for _, req := range fake.Requests() {
		names = append(names, req.Command)
		assert.Equal(t, testutil.FakeStreamSessionID, req.StreamSessionID)
	}
	assert.Equal(t, []string{
		"getCandles", "getBalance", "getKeepAlive", "getNews", "getProfits",
		"getTradeStatus", "getTrades", "ping", "stopTickPrices", "stopCandles",
		"stopBalance", "stopKeepAlive", "stopNews", "stopProfits",
		"stopTradeStatus", "stopTrades",
	}, names)
}

func TestSubscribeRequiresLogin(t *testing.T) {
	s, fake, main := newStream(t)
	_, err := main.Logout(context.Background())
	require.NoError(t, err)

	err = s.SubscribeBalance(context.Background())
	var sockErr *helpers.SocketError
	require.ErrorAs(t, err, &sockErr)
	assert.Equal(t, helpers.MsgNotLoggedIn, sockErr.Message)
	assert.Equal(t, 0, fake.Writes())
}

func TestSubscribeRequiresStreamConnection(t *testing.T) {
	s, fake, _ := newStream(t)
	require.NoError(t, s.Close())

	err := s.SubscribeBalance(context.Background())
	var sockErr *helpers.SocketError
	require.ErrorAs(t, err, &sockErr)
	assert.Equal(t, helpers.MsgNotConnected, sockErr.Message)
	assert.Equal(t, 0, fake.Writes())
	assert.NoError(t, s.Close(), "closing twice is harmless")
}

// -----------------------------------------------------------------------------

func TestListenDispatchesTypedRecords(t *testing.T) {
	s, fake, _ := newStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fake.Push(models.StreamTickPrices, map[string]any{
		"symbol": "EURUSD", "ask": 1.0851, "bid": 1.0849, "level": 0, "timestamp": 1700000000000,
	})
	fake.Push("somethingNew", map[string]any{"x": 1})
	fake.Push(models.StreamBalance, map[string]any{"balance": 1000.0})
	fake.PushRaw([]byte(`not json`))
	fake.Push(models.StreamKeepAlive, map[string]any{"timestamp": 1700000000001})

	var ticks []models.MStreamTick
	var errs []error
	var keepAlive models.MStreamKeepAlive
	err := s.Listen(ctx, Handlers{
		OnTick:    func(t models.MStreamTick) { ticks = append(ticks, t) },
		OnBalance: func(models.MStreamBalance) { t.Error("incomplete balance must not be delivered") },
		OnKeepAlive: func(k models.MStreamKeepAlive) {
			keepAlive = k
			cancel()
		},
		OnError: func(err error) { errs = append(errs, err) },
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, ticks, 1)
	assert.Equal(t, "EURUSD", ticks[0].Symbol)
	assert.Equal(t, 1.0851, ticks[0].Tick().Ask)
	assert.Equal(t, int64(1700000000001), keepAlive.Timestamp)

	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, "decode", helpers.ErrorKind(e))
	}
	assert.Contains(t, errs[0].Error(), "MStreamBalance.credit")
}

func TestListenSkipsMessagesWithoutHandler(t *testing.T) {
	s, fake, _ := newStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fake.Push(models.StreamCandle, map[string]any{"broken": true})
	fake.Push(models.StreamNews, map[string]any{"key": "k", "title": "t", "body": "b", "time": 1})

	var errs []error
	err := s.Listen(ctx, Handlers{
		OnNews:  func(models.MStreamNews) { cancel() },
		OnError: func(err error) { errs = append(errs, err) },
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, errs)
}

func TestListenEndsOnTransportFailure(t *testing.T) {
	s, fake, _ := newStream(t)
	fake.ReadErr = errors.New("connection reset by peer")

	err := s.Listen(context.Background(), Handlers{})
	var sockErr *helpers.SocketError
	require.ErrorAs(t, err, &sockErr)
	assert.False(t, s.IsConnected())
}

func TestListenWithoutConnection(t *testing.T) {
	main := xapi.NewClient(testutil.NewFakeXapi(), 0)
	s := NewClient(main, testutil.NewFakeStream(), 0, nil)

	err := s.Listen(context.Background(), Handlers{})
	assert.Equal(t, "socket", helpers.ErrorKind(err))
}
