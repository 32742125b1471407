package models

// Records returned by the market data commands. Field tags:
//
//	xapi:"wireName[,optional][,passthrough]"
//
// Pointer fields are optional. A passthrough field also receives the payload
// itself when the server answers with a bare scalar.

// -----------------------------------------------------------------------------
// getAllSymbols / getSymbol
// -----------------------------------------------------------------------------

type MSymbol struct {
	Symbol             string  `xapi:"symbol" json:"symbol"`
	Description        string  `xapi:"description" json:"description"`
	CategoryName       string  `xapi:"categoryName" json:"categoryName"`
	GroupName          string  `xapi:"groupName" json:"groupName"`
	Currency           string  `xapi:"currency" json:"currency"`
	CurrencyProfit     string  `xapi:"currencyProfit" json:"currencyProfit"`
	CurrencyPair       bool    `xapi:"currencyPair" json:"currencyPair"`
	Ask                float64 `xapi:"ask" json:"ask"`
	Bid                float64 `xapi:"bid" json:"bid"`
	High               float64 `xapi:"high" json:"high"`
	Low                float64 `xapi:"low" json:"low"`
	SpreadRaw          float64 `xapi:"spreadRaw,optional" json:"spreadRaw"`
	SpreadTable        float64 `xapi:"spreadTable,optional" json:"spreadTable"`
	Precision          int     `xapi:"precision" json:"precision"`
	PipsPrecision      int     `xapi:"pipsPrecision,optional" json:"pipsPrecision"`
	ContractSize       int64   `xapi:"contractSize" json:"contractSize"`
	TickSize           float64 `xapi:"tickSize" json:"tickSize"`
	TickValue          float64 `xapi:"tickValue" json:"tickValue"`
	LotMin             float64 `xapi:"lotMin" json:"lotMin"`
	LotMax             float64 `xapi:"lotMax" json:"lotMax"`
	LotStep            float64 `xapi:"lotStep" json:"lotStep"`
	Leverage           float64 `xapi:"leverage,optional" json:"leverage"`
	InitialMargin      int     `xapi:"initialMargin,optional" json:"initialMargin"`
	MarginHedged       int     `xapi:"marginHedged,optional" json:"marginHedged"`
	MarginHedgedStrong bool    `xapi:"marginHedgedStrong,optional" json:"marginHedgedStrong"`
	MarginMaintenance  *int    `xapi:"marginMaintenance" json:"marginMaintenance,omitempty"`
	MarginMode         int     `xapi:"marginMode,optional" json:"marginMode"`
	Percentage         float64 `xapi:"percentage,optional" json:"percentage"`
	ProfitMode         int     `xapi:"profitMode,optional" json:"profitMode"`
	QuoteID            int     `xapi:"quoteId,optional" json:"quoteId"`
	StepRuleID         int     `xapi:"stepRuleId,optional" json:"stepRuleId"`
	StopsLevel         int     `xapi:"stopsLevel,optional" json:"stopsLevel"`
	InstantMaxVolume   int64   `xapi:"instantMaxVolume,optional" json:"instantMaxVolume"`
	LongOnly           bool    `xapi:"longOnly,optional" json:"longOnly"`
	ShortSelling       bool    `xapi:"shortSelling,optional" json:"shortSelling"`
	TrailingEnabled    bool    `xapi:"trailingEnabled,optional" json:"trailingEnabled"`
	SwapEnable         bool    `xapi:"swapEnable,optional" json:"swapEnable"`
	SwapLong           float64 `xapi:"swapLong,optional" json:"swapLong"`
	SwapShort          float64 `xapi:"swapShort,optional" json:"swapShort"`
	SwapType           int     `xapi:"swapType,optional" json:"swapType"`
	SwapRollover3Days  int     `xapi:"swap_rollover3days,optional" json:"swap_rollover3days"`
	Type               int     `xapi:"type,optional" json:"type"`
	Expiration         *int64  `xapi:"expiration" json:"expiration,omitempty"`
	Starting           *int64  `xapi:"starting" json:"starting,omitempty"`
	Time               int64   `xapi:"time" json:"time"`
	TimeString         string  `xapi:"timeString,optional" json:"timeString"`
	Exemode            *int    `xapi:"exemode" json:"exemode,omitempty"`
}

// -----------------------------------------------------------------------------
// getTickPrices
// -----------------------------------------------------------------------------

type MTick struct {
	Symbol      string  `xapi:"symbol" json:"symbol"`
	Ask         float64 `xapi:"ask" json:"ask"`
	Bid         float64 `xapi:"bid" json:"bid"`
	AskVolume   int64   `xapi:"askVolume,optional" json:"askVolume"`
	BidVolume   int64   `xapi:"bidVolume,optional" json:"bidVolume"`
	High        float64 `xapi:"high,optional" json:"high"`
	Low         float64 `xapi:"low,optional" json:"low"`
	Level       int     `xapi:"level" json:"level"`
	SpreadRaw   float64 `xapi:"spreadRaw,optional" json:"spreadRaw"`
	SpreadTable float64 `xapi:"spreadTable,optional" json:"spreadTable"`
	ExemptFlag  *bool   `xapi:"exemptFlag" json:"exemptFlag,omitempty"`
	Timestamp   int64   `xapi:"timestamp" json:"timestamp"`
}

type MTickPrices struct {
	Quotations []MTick `xapi:"quotations" json:"quotations"`
}

// -----------------------------------------------------------------------------
// getChartLastRequest / getChartRangeRequest
// -----------------------------------------------------------------------------

// MRateInfo is one candle. Prices are shifted: the real open price is
// Open / 10^digits, and Close/High/Low are offsets from Open.
type MRateInfo struct {
	Ctm       int64   `xapi:"ctm" json:"ctm"`
	CtmString string  `xapi:"ctmString,optional" json:"ctmString"`
	Open      float64 `xapi:"open" json:"open"`
	Close     float64 `xapi:"close" json:"close"`
	High      float64 `xapi:"high" json:"high"`
	Low       float64 `xapi:"low" json:"low"`
	Vol       float64 `xapi:"vol" json:"vol"`
}

type MChartResponse struct {
	Digits    int         `xapi:"digits" json:"digits"`
	RateInfos []MRateInfo `xapi:"rateInfos" json:"rateInfos"`
}

// -----------------------------------------------------------------------------
// getCalendar
// -----------------------------------------------------------------------------

type MCalendar struct {
	Country  string `xapi:"country" json:"country"`
	Current  string `xapi:"current,optional" json:"current"`
	Forecast string `xapi:"forecast,optional" json:"forecast"`
	Impact   string `xapi:"impact" json:"impact"`
	Period   string `xapi:"period,optional" json:"period"`
	Previous string `xapi:"previous,optional" json:"previous"`
	Time     int64  `xapi:"time" json:"time"`
	Title    string `xapi:"title" json:"title"`
}

// -----------------------------------------------------------------------------
// getTradingHours
// -----------------------------------------------------------------------------

// MHoursRecord is one window in milliseconds since midnight. Day is 1 for
// Monday through 7 for Sunday.
type MHoursRecord struct {
	Day   int   `xapi:"day" json:"day"`
	FromT int64 `xapi:"fromT" json:"fromT"`
	ToT   int64 `xapi:"toT" json:"toT"`
}

type MTradingHours struct {
	Symbol  string         `xapi:"symbol" json:"symbol"`
	Quotes  []MHoursRecord `xapi:"quotes" json:"quotes"`
	Trading []MHoursRecord `xapi:"trading" json:"trading"`
}

// -----------------------------------------------------------------------------
// getNews
// -----------------------------------------------------------------------------

type MNews struct {
	Key        string `xapi:"key" json:"key"`
	Title      string `xapi:"title" json:"title"`
	Body       string `xapi:"body" json:"body"`
	BodyLen    int    `xapi:"bodylen,optional" json:"bodylen"`
	Time       int64  `xapi:"time" json:"time"`
	TimeString string `xapi:"timeString,optional" json:"timeString"`
}

// -----------------------------------------------------------------------------
// getStepRules
// -----------------------------------------------------------------------------

type MStep struct {
	FromValue float64 `xapi:"fromValue" json:"fromValue"`
	Step      float64 `xapi:"step" json:"step"`
}

type MStepRule struct {
	ID    int     `xapi:"id" json:"id"`
	Name  string  `xapi:"name" json:"name"`
	Steps []MStep `xapi:"steps" json:"steps"`
}

// -----------------------------------------------------------------------------
// getServerTime / getVersion
// -----------------------------------------------------------------------------

type MServerTime struct {
	Time       int64  `xapi:"time,passthrough" json:"time"`
	TimeString string `xapi:"timeString,optional" json:"timeString"`
}

type MVersion struct {
	Version string `xapi:"version,passthrough" json:"version"`
}
