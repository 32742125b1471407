package models

// -----------------------------------------------------------------------------
// tradeTransaction
// -----------------------------------------------------------------------------

// MTradeTransInfo is the argument of tradeTransaction. It is encoded, never
// decoded, so it only carries json tags.
type MTradeTransInfo struct {
	Cmd           TradeCmd        `json:"cmd"`
	Type          TransactionType `json:"type"`
	Symbol        string          `json:"symbol"`
	Volume        float64         `json:"volume"`
	Price         float64         `json:"price"`
	Sl            float64         `json:"sl"`
	Tp            float64         `json:"tp"`
	Order         int64           `json:"order"`
	Offset        int             `json:"offset"`
	Expiration    int64           `json:"expiration"`
	CustomComment string          `json:"customComment,omitempty"`
}

type MTradeTransaction struct {
	Order int64 `xapi:"order" json:"order"`
}

// -----------------------------------------------------------------------------
// tradeTransactionStatus
// -----------------------------------------------------------------------------

type MTradeTransactionStatus struct {
	Order         int64         `xapi:"order" json:"order"`
	RequestStatus RequestStatus `xapi:"requestStatus" json:"requestStatus"`
	Ask           float64       `xapi:"ask,optional" json:"ask"`
	Bid           float64       `xapi:"bid,optional" json:"bid"`
	CustomComment string        `xapi:"customComment,optional" json:"customComment"`
	Message       *string       `xapi:"message" json:"message,omitempty"`
}
