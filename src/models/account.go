package models

// -----------------------------------------------------------------------------
// getCurrentUserData
// -----------------------------------------------------------------------------

type MUser struct {
	CompanyUnit        int     `xapi:"companyUnit" json:"companyUnit"`
	Currency           string  `xapi:"currency" json:"currency"`
	Group              string  `xapi:"group" json:"group"`
	IbAccount          bool    `xapi:"ibAccount" json:"ibAccount"`
	Leverage           int     `xapi:"leverage,optional" json:"leverage"`
	LeverageMultiplier float64 `xapi:"leverageMultiplier" json:"leverageMultiplier"`
	SpreadType         *string `xapi:"spreadType" json:"spreadType,omitempty"`
	TrailingStop       bool    `xapi:"trailingStop" json:"trailingStop"`
}

// -----------------------------------------------------------------------------
// getMarginLevel / getMarginTrade
// -----------------------------------------------------------------------------

type MMarginLevel struct {
	Balance     float64 `xapi:"balance" json:"balance"`
	Credit      float64 `xapi:"credit" json:"credit"`
	Currency    string  `xapi:"currency" json:"currency"`
	Equity      float64 `xapi:"equity" json:"equity"`
	Margin      float64 `xapi:"margin" json:"margin"`
	MarginFree  float64 `xapi:"margin_free" json:"margin_free"`
	MarginLevel float64 `xapi:"margin_level" json:"margin_level"`
}

type MMarginTrade struct {
	Margin float64 `xapi:"margin" json:"margin"`
}

// -----------------------------------------------------------------------------
// getCommissionDef / getProfitCalculation
// -----------------------------------------------------------------------------

type MCommission struct {
	Commission     float64 `xapi:"commission" json:"commission"`
	RateOfExchange float64 `xapi:"rateOfExchange" json:"rateOfExchange"`
}

type MProfitCalculation struct {
	Profit float64 `xapi:"profit" json:"profit"`
}

// -----------------------------------------------------------------------------
// getTrades / getTradeRecords / getTradesHistory
// -----------------------------------------------------------------------------

type MTrade struct {
	Order            int64    `xapi:"order" json:"order"`
	Order2           int64    `xapi:"order2" json:"order2"`
	Position         int64    `xapi:"position" json:"position"`
	Symbol           *string  `xapi:"symbol" json:"symbol,omitempty"`
	Cmd              TradeCmd `xapi:"cmd" json:"cmd"`
	Volume           float64  `xapi:"volume" json:"volume"`
	Digits           int      `xapi:"digits" json:"digits"`
	OpenPrice        float64  `xapi:"open_price" json:"open_price"`
	OpenTime         int64    `xapi:"open_time" json:"open_time"`
	OpenTimeString   string   `xapi:"open_timeString,optional" json:"open_timeString"`
	ClosePrice       float64  `xapi:"close_price" json:"close_price"`
	CloseTime        *int64   `xapi:"close_time" json:"close_time,omitempty"`
	CloseTimeString  *string  `xapi:"close_timeString" json:"close_timeString,omitempty"`
	Closed           bool     `xapi:"closed" json:"closed"`
	Sl               float64  `xapi:"sl" json:"sl"`
	Tp               float64  `xapi:"tp" json:"tp"`
	Offset           int      `xapi:"offset,optional" json:"offset"`
	Profit           *float64 `xapi:"profit" json:"profit,omitempty"`
	Commission       float64  `xapi:"commission,optional" json:"commission"`
	Storage          float64  `xapi:"storage,optional" json:"storage"`
	MarginRate       float64  `xapi:"margin_rate,optional" json:"margin_rate"`
	Comment          string   `xapi:"comment,optional" json:"comment"`
	CustomComment    string   `xapi:"customComment,optional" json:"customComment"`
	Expiration       *int64   `xapi:"expiration" json:"expiration,omitempty"`
	ExpirationString *string  `xapi:"expirationString" json:"expirationString,omitempty"`
	Timestamp        int64    `xapi:"timestamp,optional" json:"timestamp"`
}

// SymbolName returns the symbol or "" for balance/credit operations.
func (t MTrade) SymbolName() string {
	if t.Symbol == nil {
		return ""
	}
	return *t.Symbol
}

// -----------------------------------------------------------------------------
// getIbsHistory
// -----------------------------------------------------------------------------

// MIbRecord fields are all nullable on the wire.
type MIbRecord struct {
	ClosePrice *float64 `xapi:"closePrice" json:"closePrice,omitempty"`
	Login      *string  `xapi:"login" json:"login,omitempty"`
	Nominal    *float64 `xapi:"nominal" json:"nominal,omitempty"`
	OpenPrice  *float64 `xapi:"openPrice" json:"openPrice,omitempty"`
	Side       *int     `xapi:"side" json:"side,omitempty"`
	Surname    *string  `xapi:"surname" json:"surname,omitempty"`
	Symbol     *string  `xapi:"symbol" json:"symbol,omitempty"`
	Timestamp  *int64   `xapi:"timestamp" json:"timestamp,omitempty"`
	Volume     *float64 `xapi:"volume" json:"volume,omitempty"`
}
