package models

// Records pushed by the streaming server, keyed by the "command" of each
// message.

const (
	StreamTickPrices  = "tickPrices"
	StreamCandle      = "candle"
	StreamBalance     = "balance"
	StreamKeepAlive   = "keepAlive"
	StreamNews        = "news"
	StreamProfit      = "profit"
	StreamTradeStatus = "tradeStatus"
	StreamTrade       = "trade"
)

// -----------------------------------------------------------------------------

type MStreamTick struct {
	Symbol      string  `xapi:"symbol" json:"symbol"`
	Ask         float64 `xapi:"ask" json:"ask"`
	Bid         float64 `xapi:"bid" json:"bid"`
	AskVolume   int64   `xapi:"askVolume,optional" json:"askVolume"`
	BidVolume   int64   `xapi:"bidVolume,optional" json:"bidVolume"`
	High        float64 `xapi:"high,optional" json:"high"`
	Low         float64 `xapi:"low,optional" json:"low"`
	Level       int     `xapi:"level,optional" json:"level"`
	QuoteID     int     `xapi:"quoteId,optional" json:"quoteId"`
	SpreadRaw   float64 `xapi:"spreadRaw,optional" json:"spreadRaw"`
	SpreadTable float64 `xapi:"spreadTable,optional" json:"spreadTable"`
	Timestamp   int64   `xapi:"timestamp" json:"timestamp"`
}

// Tick converts a streamed quote to the shape returned by getTickPrices.
func (t MStreamTick) Tick() MTick {
	return MTick{
		Symbol:      t.Symbol,
		Ask:         t.Ask,
		Bid:         t.Bid,
		AskVolume:   t.AskVolume,
		BidVolume:   t.BidVolume,
		High:        t.High,
		Low:         t.Low,
		Level:       t.Level,
		SpreadRaw:   t.SpreadRaw,
		SpreadTable: t.SpreadTable,
		Timestamp:   t.Timestamp,
	}
}

// -----------------------------------------------------------------------------

type MStreamCandle struct {
	Symbol    string  `xapi:"symbol" json:"symbol"`
	Ctm       int64   `xapi:"ctm" json:"ctm"`
	CtmString string  `xapi:"ctmString,optional" json:"ctmString"`
	Open      float64 `xapi:"open" json:"open"`
	Close     float64 `xapi:"close" json:"close"`
	High      float64 `xapi:"high" json:"high"`
	Low       float64 `xapi:"low" json:"low"`
	Vol       float64 `xapi:"vol" json:"vol"`
	QuoteID   int     `xapi:"quoteId,optional" json:"quoteId"`
}

type MStreamBalance struct {
	Balance     float64 `xapi:"balance" json:"balance"`
	Credit      float64 `xapi:"credit" json:"credit"`
	Equity      float64 `xapi:"equity" json:"equity"`
	Margin      float64 `xapi:"margin" json:"margin"`
	MarginFree  float64 `xapi:"marginFree" json:"marginFree"`
	MarginLevel float64 `xapi:"marginLevel" json:"marginLevel"`
}

type MStreamKeepAlive struct {
	Timestamp int64 `xapi:"timestamp" json:"timestamp"`
}

type MStreamNews struct {
	Key   string `xapi:"key" json:"key"`
	Title string `xapi:"title" json:"title"`
	Body  string `xapi:"body" json:"body"`
	Time  int64  `xapi:"time" json:"time"`
}

type MStreamProfit struct {
	Order    int64   `xapi:"order" json:"order"`
	Order2   int64   `xapi:"order2" json:"order2"`
	Position int64   `xapi:"position" json:"position"`
	Profit   float64 `xapi:"profit" json:"profit"`
}

type MStreamTradeStatus struct {
	Order         int64         `xapi:"order" json:"order"`
	RequestStatus RequestStatus `xapi:"requestStatus" json:"requestStatus"`
	Price         float64       `xapi:"price,optional" json:"price"`
	CustomComment string        `xapi:"customComment,optional" json:"customComment"`
	Message       *string       `xapi:"message" json:"message,omitempty"`
}

// MStreamTrade is sent when a trade is opened, modified or closed. State is
// "Modified" or "Deleted"; Type is 0 (open), 1 (pending), 2 (close) or 3
// (modify).
type MStreamTrade struct {
	Order         int64    `xapi:"order" json:"order"`
	Order2        int64    `xapi:"order2" json:"order2"`
	Position      int64    `xapi:"position" json:"position"`
	Symbol        string   `xapi:"symbol" json:"symbol"`
	Cmd           TradeCmd `xapi:"cmd" json:"cmd"`
	Type          int      `xapi:"type" json:"type"`
	State         string   `xapi:"state" json:"state"`
	Volume        float64  `xapi:"volume" json:"volume"`
	Digits        int      `xapi:"digits,optional" json:"digits"`
	OpenPrice     float64  `xapi:"open_price" json:"open_price"`
	OpenTime      int64    `xapi:"open_time" json:"open_time"`
	ClosePrice    float64  `xapi:"close_price,optional" json:"close_price"`
	CloseTime     *int64   `xapi:"close_time" json:"close_time,omitempty"`
	Closed        bool     `xapi:"closed" json:"closed"`
	Sl            float64  `xapi:"sl,optional" json:"sl"`
	Tp            float64  `xapi:"tp,optional" json:"tp"`
	Offset        int      `xapi:"offset,optional" json:"offset"`
	Profit        *float64 `xapi:"profit" json:"profit,omitempty"`
	Commission    float64  `xapi:"commission,optional" json:"commission"`
	Storage       float64  `xapi:"storage,optional" json:"storage"`
	MarginRate    float64  `xapi:"margin_rate,optional" json:"margin_rate"`
	Comment       string   `xapi:"comment,optional" json:"comment"`
	CustomComment string   `xapi:"customComment,optional" json:"customComment"`
	Expiration    *int64   `xapi:"expiration" json:"expiration,omitempty"`
}
