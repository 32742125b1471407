package xapi

import (
	"context"
	"testing"

	"xapi-connector/src/decoder"
	"xapi-connector/src/helpers"
	"xapi-connector/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tradeRecordJSON = `[{
	"order": 324596785, "order2": 324596786, "position": 324596785,
	"symbol": "ETHEREUM", "cmd": 0, "volume": 0.1, "digits": 2,
	"open_price": 1850.25, "open_time": 1690000000000, "open_timeString": "x",
	"close_price": 1851.0, "close_time": null, "close_timeString": null,
	"closed": false, "sl": 0.0, "tp": 0.0, "offset": 0, "profit": 0.75,
	"commission": 0.0, "storage": 0.0, "margin_rate": 0.0, "comment": "",
	"customComment": "", "expiration": null, "expirationString": null,
	"timestamp": 1690000001000
}]`

func TestGetTickPrices(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("getTickPrices", `{"quotations":[{
		"symbol":"EURPLN","ask":4.3563,"bid":4.3511,"askVolume":15000,"bidVolume":16000,
		"high":4.3622,"low":4.3410,"level":0,"spreadRaw":0.0052,"spreadTable":5.2,
		"exemptFlag":true,"timestamp":1700000000000}]}`)

	prices, err := c.GetTickPrices(context.Background(), 0, []string{"EURPLN"}, 0)
	require.NoError(t, err)
	require.Len(t, prices.Quotations, 1)
	tick := prices.Quotations[0]
	assert.Equal(t, "EURPLN", tick.Symbol)
	assert.Equal(t, 4.3563, tick.Ask)
	require.NotNil(t, tick.ExemptFlag)
	assert.True(t, *tick.ExemptFlag)

	req, _ := fake.LastRequest("getTickPrices")
	assert.Equal(t, []any{"EURPLN"}, req.Arguments["symbols"])
	assert.Equal(t, float64(0), req.Arguments["level"])
	assert.Equal(t, float64(0), req.Arguments["timestamp"])
}

func TestGetTradeRecords(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("getTradeRecords", tradeRecordJSON)

	trades, err := c.GetTradeRecords(context.Background(), []int64{324596785})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(324596785), trades[0].Order)
	assert.Equal(t, "ETHEREUM", trades[0].SymbolName())
	assert.Equal(t, models.CmdBuy, trades[0].Cmd)
	assert.Nil(t, trades[0].CloseTime)
	require.NotNil(t, trades[0].Profit)
	assert.Equal(t, 0.75, *trades[0].Profit)

	req, _ := fake.LastRequest("getTradeRecords")
	assert.Equal(t, []any{float64(324596785)}, req.Arguments["orders"])
}

func TestGetTradesHistoryEmpty(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("getTradesHistory", `[]`)

	trades, err := c.GetTradesHistory(context.Background(), 0, 1690000000000)
	require.NoError(t, err)
	assert.NotNil(t, trades)
	assert.Empty(t, trades)

	req, _ := fake.LastRequest("getTradesHistory")
	assert.Equal(t, map[string]any{"end": float64(0), "start": float64(1690000000000)}, req.Arguments)
}

func TestPingReportsStatus(t *testing.T) {
	c, fake := loggedIn(t)

	alive, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.True(t, alive)

	req, ok := fake.LastRequest("ping")
	require.True(t, ok)
	assert.Nil(t, req.Arguments)
}

func TestGetVersionScalarPayload(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("getVersion", `"2.5.0"`)

	v, err := c.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.5.0", v.Version)

	fake.RespondJSON("getVersion", `{"version":"2.5.1"}`)
	v, err = c.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.5.1", v.Version)
}

func TestGetServerTimeScalarPayload(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("getServerTime", `1700000000123`)

	st, err := c.GetServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), st.Time)
	assert.Empty(t, st.TimeString)
}

func TestDecodeFailureKeepsConnection(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("getCommissionDef", `{"commission":0.0}`)

	_, err := c.GetCommissionDef(context.Background(), "EURPLN", 1)
	var decErr *helpers.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Contains(t, err.Error(), "MCommission.rateOfExchange")
	assert.True(t, c.IsLoggedIn())
}

func TestChartRequestIsWrapped(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("getChartLastRequest", `{"digits":5,"rateInfos":[
		{"ctm":1700000000000,"open":108650.0,"close":2.0,"high":5.0,"low":-1.0,"vol":120.0}]}`)

	chart, err := c.GetChartLastRequest(context.Background(), models.PeriodH1, 1690000000000, "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, 5, chart.Digits)
	require.Len(t, chart.RateInfos, 1)
	assert.Equal(t, 108650.0, chart.RateInfos[0].Open)

	req, _ := fake.LastRequest("getChartLastRequest")
	info, ok := req.Arguments["info"].(map[string]any)
	require.True(t, ok, "arguments are nested under info")
	assert.Equal(t, float64(60), info["period"])
	assert.Equal(t, "EURUSD", info["symbol"])
}

func TestTradeTransaction(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("tradeTransaction", `{"order":43}`)
	fake.RespondJSON("tradeTransactionStatus",
		`{"order":43,"requestStatus":3,"ask":1.1,"bid":1.09,"customComment":"","message":null}`)

	tx, err := c.TradeTransaction(context.Background(), models.MTradeTransInfo{
		Cmd: models.CmdBuy, Type: models.TransactionOpen, Symbol: "EURUSD", Volume: 0.1, Price: 1.1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(43), tx.Order)

	req, _ := fake.LastRequest("tradeTransaction")
	info := req.Arguments["tradeTransInfo"].(map[string]any)
	assert.Equal(t, "EURUSD", info["symbol"])
	assert.NotContains(t, info, "customComment")

	status, err := c.TradeTransactionStatus(context.Background(), tx.Order)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, status.RequestStatus)
	assert.Nil(t, status.Message)
}

// -----------------------------------------------------------------------------
// Command table
// -----------------------------------------------------------------------------

func TestArguments(t *testing.T) {
	args, err := CmdGetCommissionDef.arguments([]any{"EURPLN", 1.0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"symbol": "EURPLN", "volume": 1.0}, args)

	args, err = CmdGetAllSymbols.arguments(nil)
	require.NoError(t, err)
	assert.Nil(t, args)

	_, err = CmdGetCommissionDef.arguments([]any{"EURPLN"})
	assert.EqualError(t, err, "getCommissionDef takes 2 arguments, got 1")

	_, err = CmdGetCommissionDef.arguments([]any{nil, 1.0})
	assert.EqualError(t, err, "getCommissionDef: argument symbol is required")

	args, err = CmdLogin.arguments([]any{"u", "p", nil})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"userId": "u", "password": "p"}, args)
}

func TestCommandTable(t *testing.T) {
	cmds := Commands()
	require.Len(t, cmds, 25)
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Name, cmds[i].Name)
	}
	for _, cmd := range cmds {
		assert.False(t, cmd.Streaming, cmd.Name)
	}

	cmd, ok := Lookup("getTickPrices")
	require.True(t, ok)
	assert.Equal(t, ShapeRecord, cmd.Shape)
	_, ok = Lookup("getCandles")
	assert.False(t, ok, "stream commands are not in the command table")
}

// -----------------------------------------------------------------------------
// Call
// -----------------------------------------------------------------------------

func TestCallByName(t *testing.T) {
	c, fake := loggedIn(t)
	fake.RespondJSON("getMarginLevel", `{"balance":1000,"credit":0,"currency":"PLN","equity":1000,
		"margin":0,"margin_free":1000,"margin_level":0}`)

	p, err := c.Call(context.Background(), "getMarginLevel", nil)
	require.NoError(t, err)
	assert.Equal(t, decoder.KindObject, p.Kind)
	assert.Equal(t, "PLN", p.Object["currency"])
}

func TestCallRejections(t *testing.T) {
	c, fake := loggedIn(t)
	ctx := context.Background()

	_, err := c.Call(ctx, "nope", nil)
	assert.EqualError(t, err, `unknown command "nope"`)

	_, err = c.Call(ctx, "logout", nil)
	assert.Error(t, err)
	assert.True(t, c.IsLoggedIn())

	_, err = c.Call(ctx, "getSymbol", map[string]any{"symbol": "EURUSD", "extra": 1})
	assert.EqualError(t, err, `getSymbol does not take argument "extra"`)

	fake.RespondJSON("getAllSymbols", `{"symbol":"EURUSD"}`)
	_, err = c.Call(ctx, "getAllSymbols", nil)
	assert.Equal(t, "decode", helpers.ErrorKind(err))

	fake.RespondJSON("getSymbol", `[]`)
	_, err = c.Call(ctx, "getSymbol", map[string]any{"symbol": "EURUSD"})
	assert.Equal(t, "decode", helpers.ErrorKind(err))

}
