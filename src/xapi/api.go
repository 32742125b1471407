package xapi

import (
	"context"

	"xapi-connector/src/models"
)

// Typed methods of the command connection. Each one is a row of the command
// table plus the record type it decodes to. Timestamps are milliseconds since
// the epoch.

// Ping keeps the session alive and reports the status the server answered
// with.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	return callStatus(ctx, c, CmdPing)
}

func (c *Client) GetAllSymbols(ctx context.Context) ([]models.MSymbol, error) {
	return callMany[models.MSymbol](ctx, c, CmdGetAllSymbols)
}

func (c *Client) GetSymbol(ctx context.Context, symbol string) (models.MSymbol, error) {
	return callOne[models.MSymbol](ctx, c, CmdGetSymbol, symbol)
}

func (c *Client) GetCalendar(ctx context.Context) ([]models.MCalendar, error) {
	return callMany[models.MCalendar](ctx, c, CmdGetCalendar)
}

func (c *Client) GetChartLastRequest(ctx context.Context, period models.Period, start int64, symbol string) (models.MChartResponse, error) {
	return callOne[models.MChartResponse](ctx, c, CmdGetChartLastRequest, period, start, symbol)
}

// GetChartRangeRequest reads candles between start and end, or ticks candles
// from start when ticks is non-zero (negative goes back in time).
func (c *Client) GetChartRangeRequest(ctx context.Context, end int64, period models.Period, start int64, symbol string, ticks int) (models.MChartResponse, error) {
	return callOne[models.MChartResponse](ctx, c, CmdGetChartRangeRequest, end, period, start, symbol, ticks)
}

func (c *Client) GetCommissionDef(ctx context.Context, symbol string, volume float64) (models.MCommission, error) {
	return callOne[models.MCommission](ctx, c, CmdGetCommissionDef, symbol, volume)
}

func (c *Client) GetCurrentUserData(ctx context.Context) (models.MUser, error) {
	return callOne[models.MUser](ctx, c, CmdGetCurrentUserData)
}

func (c *Client) GetIbsHistory(ctx context.Context, end, start int64) ([]models.MIbRecord, error) {
	return callMany[models.MIbRecord](ctx, c, CmdGetIbsHistory, end, start)
}

func (c *Client) GetMarginLevel(ctx context.Context) (models.MMarginLevel, error) {
	return callOne[models.MMarginLevel](ctx, c, CmdGetMarginLevel)
}

func (c *Client) GetMarginTrade(ctx context.Context, symbol string, volume float64) (models.MMarginTrade, error) {
	return callOne[models.MMarginTrade](ctx, c, CmdGetMarginTrade, symbol, volume)
}

func (c *Client) GetNews(ctx context.Context, end, start int64) ([]models.MNews, error) {
	return callMany[models.MNews](ctx, c, CmdGetNews, end, start)
}

func (c *Client) GetProfitCalculation(ctx context.Context, closePrice float64, cmd models.TradeCmd, openPrice float64, symbol string, volume float64) (models.MProfitCalculation, error) {
	return callOne[models.MProfitCalculation](ctx, c, CmdGetProfitCalculation, closePrice, cmd, openPrice, symbol, volume)
}

func (c *Client) GetServerTime(ctx context.Context) (models.MServerTime, error) {
	return callOne[models.MServerTime](ctx, c, CmdGetServerTime)
}

func (c *Client) GetStepRules(ctx context.Context) ([]models.MStepRule, error) {
	return callMany[models.MStepRule](ctx, c, CmdGetStepRules)
}

// GetTickPrices returns quotes newer than timestamp. level -1 asks for all
// depth levels, 0 for the base level only.
func (c *Client) GetTickPrices(ctx context.Context, level int, symbols []string, timestamp int64) (models.MTickPrices, error) {
	return callOne[models.MTickPrices](ctx, c, CmdGetTickPrices, level, symbols, timestamp)
}

func (c *Client) GetTradeRecords(ctx context.Context, orders []int64) ([]models.MTrade, error) {
	return callMany[models.MTrade](ctx, c, CmdGetTradeRecords, orders)
}

func (c *Client) GetTrades(ctx context.Context, openedOnly bool) ([]models.MTrade, error) {
	return callMany[models.MTrade](ctx, c, CmdGetTrades, openedOnly)
}

// GetTradesHistory passes start and end through as given; an end of 0 means
// "now" on the server. Trades come back in server order.
func (c *Client) GetTradesHistory(ctx context.Context, end, start int64) ([]models.MTrade, error) {
	return callMany[models.MTrade](ctx, c, CmdGetTradesHistory, end, start)
}

func (c *Client) GetTradingHours(ctx context.Context, symbols []string) ([]models.MTradingHours, error) {
	return callMany[models.MTradingHours](ctx, c, CmdGetTradingHours, symbols)
}

func (c *Client) GetVersion(ctx context.Context) (models.MVersion, error) {
	return callOne[models.MVersion](ctx, c, CmdGetVersion)
}

// -----------------------------------------------------------------------------
// Trading
// -----------------------------------------------------------------------------

// TradeTransaction submits an order. The returned order number is then
// polled with TradeTransactionStatus.
func (c *Client) TradeTransaction(ctx context.Context, info models.MTradeTransInfo) (models.MTradeTransaction, error) {
	return callOne[models.MTradeTransaction](ctx, c, CmdTradeTransaction,
		info.Cmd, omitEmpty(info.CustomComment), info.Expiration, info.Offset, info.Order,
		info.Price, info.Sl, info.Symbol, info.Tp, info.Type, info.Volume)
}

func (c *Client) TradeTransactionStatus(ctx context.Context, order int64) (models.MTradeTransactionStatus, error) {
	return callOne[models.MTradeTransactionStatus](ctx, c, CmdTradeTransactionStatus, order)
}
