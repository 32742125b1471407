package xapi

import "sort"

// Shape is the form of returnData a command answers with.
type Shape int

const (
	ShapeNone   Shape = iota // status only
	ShapeRecord              // one object, or a scalar for passthrough records
	ShapeList                // list of objects
)

func (s Shape) String() string {
	switch s {
	case ShapeRecord:
		return "record"
	case ShapeList:
		return "list"
	}
	return "none"
}

// -----------------------------------------------------------------------------

// Command describes one remote operation. Params are the argument names in
// the order the typed methods pass them; a trailing "?" marks an argument
// that is left out when its value is nil. Wrap nests all arguments under one
// key, as chart requests and tradeTransaction expect.
type Command struct {
	Name      string
	Params    []string
	Wrap      string
	Shape     Shape
	Anonymous bool // allowed before login
	Streaming bool // sent on the stream connection, flat, with streamSessionId
}

// -----------------------------------------------------------------------------
// Command connection
// -----------------------------------------------------------------------------

var (
	CmdLogin  = Command{Name: "login", Params: []string{"userId", "password", "appName?"}, Anonymous: true}
	CmdLogout = Command{Name: "logout"}
	CmdPing   = Command{Name: "ping"}

	CmdGetAllSymbols        = Command{Name: "getAllSymbols", Shape: ShapeList}
	CmdGetSymbol            = Command{Name: "getSymbol", Params: []string{"symbol"}, Shape: ShapeRecord}
	CmdGetCalendar          = Command{Name: "getCalendar", Shape: ShapeList}
	CmdGetChartLastRequest  = Command{Name: "getChartLastRequest", Params: []string{"period", "start", "symbol"}, Wrap: "info", Shape: ShapeRecord}
	CmdGetChartRangeRequest = Command{Name: "getChartRangeRequest", Params: []string{"end", "period", "start", "symbol", "ticks"}, Wrap: "info", Shape: ShapeRecord}
	CmdGetCommissionDef     = Command{Name: "getCommissionDef", Params: []string{"symbol", "volume"}, Shape: ShapeRecord}
	CmdGetCurrentUserData   = Command{Name: "getCurrentUserData", Shape: ShapeRecord}
	CmdGetIbsHistory        = Command{Name: "getIbsHistory", Params: []string{"end", "start"}, Shape: ShapeList}
	CmdGetMarginLevel       = Command{Name: "getMarginLevel", Shape: ShapeRecord}
	CmdGetMarginTrade       = Command{Name: "getMarginTrade", Params: []string{"symbol", "volume"}, Shape: ShapeRecord}
	CmdGetNews              = Command{Name: "getNews", Params: []string{"end", "start"}, Shape: ShapeList}
	CmdGetProfitCalculation = Command{Name: "getProfitCalculation", Params: []string{"closePrice", "cmd", "openPrice", "symbol", "volume"}, Shape: ShapeRecord}
	CmdGetServerTime        = Command{Name: "getServerTime", Shape: ShapeRecord}
	CmdGetStepRules         = Command{Name: "getStepRules", Shape: ShapeList}
	CmdGetTickPrices        = Command{Name: "getTickPrices", Params: []string{"level", "symbols", "timestamp"}, Shape: ShapeRecord}
	CmdGetTradeRecords      = Command{Name: "getTradeRecords", Params: []string{"orders"}, Shape: ShapeList}
	CmdGetTrades            = Command{Name: "getTrades", Params: []string{"openedOnly"}, Shape: ShapeList}
	CmdGetTradesHistory     = Command{Name: "getTradesHistory", Params: []string{"end", "start"}, Shape: ShapeList}
	CmdGetTradingHours      = Command{Name: "getTradingHours", Params: []string{"symbols"}, Shape: ShapeList}
	CmdGetVersion           = Command{Name: "getVersion", Shape: ShapeRecord}

	CmdTradeTransaction = Command{Name: "tradeTransaction", Wrap: "tradeTransInfo", Shape: ShapeRecord,
		Params: []string{"cmd", "customComment?", "expiration", "offset", "order", "price", "sl", "symbol", "tp", "type", "volume"}}
	CmdTradeTransactionStatus = Command{Name: "tradeTransactionStatus", Params: []string{"order"}, Shape: ShapeRecord}
)

// -----------------------------------------------------------------------------
// Stream connection
// -----------------------------------------------------------------------------

var (
	StreamGetTickPrices   = Command{Name: "getTickPrices", Params: []string{"symbol", "minArrivalTime?", "maxLevel?"}, Streaming: true}
	StreamStopTickPrices  = Command{Name: "stopTickPrices", Params: []string{"symbol"}, Streaming: true}
	StreamGetCandles      = Command{Name: "getCandles", Params: []string{"symbol"}, Streaming: true}
	StreamStopCandles     = Command{Name: "stopCandles", Params: []string{"symbol"}, Streaming: true}
	StreamGetBalance      = Command{Name: "getBalance", Streaming: true}
	StreamStopBalance     = Command{Name: "stopBalance", Streaming: true}
	StreamGetKeepAlive    = Command{Name: "getKeepAlive", Streaming: true}
	StreamStopKeepAlive   = Command{Name: "stopKeepAlive", Streaming: true}
	StreamGetNews         = Command{Name: "getNews", Streaming: true}
	StreamStopNews        = Command{Name: "stopNews", Streaming: true}
	StreamGetProfits      = Command{Name: "getProfits", Streaming: true}
	StreamStopProfits     = Command{Name: "stopProfits", Streaming: true}
	StreamGetTradeStatus  = Command{Name: "getTradeStatus", Streaming: true}
	StreamStopTradeStatus = Command{Name: "stopTradeStatus", Streaming: true}
	StreamGetTrades       = Command{Name: "getTrades", Streaming: true}
	StreamStopTrades      = Command{Name: "stopTrades", Streaming: true}
	StreamPing            = Command{Name: "ping", Streaming: true}
)

// -----------------------------------------------------------------------------

var commandTable = map[string]Command{}

func init() {
	for _, cmd := range []Command{
		CmdLogin, CmdLogout, CmdPing,
		CmdGetAllSymbols, CmdGetSymbol, CmdGetCalendar, CmdGetChartLastRequest,
		CmdGetChartRangeRequest, CmdGetCommissionDef, CmdGetCurrentUserData,
		CmdGetIbsHistory, CmdGetMarginLevel, CmdGetMarginTrade, CmdGetNews,
		CmdGetProfitCalculation, CmdGetServerTime, CmdGetStepRules,
		CmdGetTickPrices, CmdGetTradeRecords, CmdGetTrades, CmdGetTradesHistory,
		CmdGetTradingHours, CmdGetVersion, CmdTradeTransaction,
		CmdTradeTransactionStatus,
	} {
		commandTable[cmd.Name] = cmd
	}
}

// Lookup finds a command of the command connection by its wire name.
func Lookup(name string) (Command, bool) {
	cmd, ok := commandTable[name]
	return cmd, ok
}

// Commands lists the command connection's commands sorted by name.
func Commands() []Command {
	out := make([]Command, 0, len(commandTable))
	for _, cmd := range commandTable {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
