package models

import "strings"

// -----------------------------------------------------------------------------
// Trade command (TRADE_RECORD.cmd, TRADE_TRANS_INFO.cmd)
// -----------------------------------------------------------------------------

type TradeCmd int

const (
	CmdBuy TradeCmd = iota
	CmdSell
	CmdBuyLimit
	CmdSellLimit
	CmdBuyStop
	CmdSellStop
	CmdBalance // read only
	CmdCredit  // read only
)

var tradeCmdNames = map[TradeCmd]string{
	CmdBuy:       "BUY",
	CmdSell:      "SELL",
	CmdBuyLimit:  "BUY_LIMIT",
	CmdSellLimit: "SELL_LIMIT",
	CmdBuyStop:   "BUY_STOP",
	CmdSellStop:  "SELL_STOP",
	CmdBalance:   "BALANCE",
	CmdCredit:    "CREDIT",
}

func (c TradeCmd) String() string {
	if s, ok := tradeCmdNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseTradeCmd maps "BUY", "sell_limit", ... back to a TradeCmd.
func ParseTradeCmd(s string) (TradeCmd, bool) {
	for c, name := range tradeCmdNames {
		if strings.EqualFold(name, s) {
			return c, true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Transaction type (TRADE_TRANS_INFO.type)
// -----------------------------------------------------------------------------

type TransactionType int

const (
	TransactionOpen TransactionType = iota
	TransactionPending
	TransactionClose
	TransactionModify
	TransactionDelete
)

// -----------------------------------------------------------------------------
// Request status (tradeTransactionStatus, stream tradeStatus)
// -----------------------------------------------------------------------------

type RequestStatus int

const (
	RequestError    RequestStatus = 0
	RequestPending  RequestStatus = 1
	RequestAccepted RequestStatus = 3
	RequestRejected RequestStatus = 4
)

func (s RequestStatus) String() string {
	switch s {
	case RequestError:
		return "ERROR"
	case RequestPending:
		return "PENDING"
	case RequestAccepted:
		return "ACCEPTED"
	case RequestRejected:
		return "REJECTED"
	}
	return "UNKNOWN"
}

// -----------------------------------------------------------------------------
// Chart period in minutes
// -----------------------------------------------------------------------------

type Period int

const (
	PeriodM1  Period = 1
	PeriodM5  Period = 5
	PeriodM15 Period = 15
	PeriodM30 Period = 30
	PeriodH1  Period = 60
	PeriodH4  Period = 240
	PeriodD1  Period = 1440
	PeriodW1  Period = 10080
	PeriodMN1 Period = 43200
)

var periodNames = map[string]Period{
	"M1": PeriodM1, "M5": PeriodM5, "M15": PeriodM15, "M30": PeriodM30,
	"H1": PeriodH1, "H4": PeriodH4, "D1": PeriodD1, "W1": PeriodW1, "MN1": PeriodMN1,
}

// ParsePeriod accepts the usual chart labels ("M1", "h4", "D1").
func ParsePeriod(s string) (Period, bool) {
	for name, p := range periodNames {
		if strings.EqualFold(name, s) {
			return p, true
		}
	}
	return 0, false
}
