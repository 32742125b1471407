package storage

import (
	"database/sql"
	"time"

	"xapi-connector/src/models"
)

// Tables are created in this order by both backends.
var tableOrder = []string{"ticks", "trades", "symbols"}

const tickColumns = "symbol, timestamp, level, ask, bid, ask_volume, bid_volume, high, low, spread_raw, spread_table"

// retentionCutoff is in milliseconds, like every xAPI timestamp.
func retentionCutoff(days int) int64 {
	return time.Now().UTC().AddDate(0, 0, -days).UnixMilli()
}

// -----------------------------------------------------------------------------

func scanTicks(rows *sql.Rows) ([]models.MTick, error) {
	defer rows.Close()

	ticks := []models.MTick{}
	for rows.Next() {
		var t models.MTick
		if err := rows.Scan(&t.Symbol, &t.Timestamp, &t.Level, &t.Ask, &t.Bid, &t.AskVolume, &t.BidVolume,
			&t.High, &t.Low, &t.SpreadRaw, &t.SpreadTable); err != nil {
			return nil, err
		}
		ticks = append(ticks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ticks, nil
}

// -----------------------------------------------------------------------------

// tradeRow flattens a trade into the trades column order. Nullable fields
// stay nil.
func tradeRow(t models.MTrade, now int64) []any {
	var symbol, closeTime, profit any
	if t.Symbol != nil {
		symbol = *t.Symbol
	}
	if t.CloseTime != nil {
		closeTime = *t.CloseTime
	}
	if t.Profit != nil {
		profit = *t.Profit
	}
	return []any{
		t.Order, t.Order2, t.Position, symbol, int(t.Cmd), t.Volume, t.OpenPrice, t.OpenTime,
		t.ClosePrice, closeTime, t.Closed, t.Sl, t.Tp, profit, t.Commission, t.Storage, t.Comment, now,
	}
}

func symbolRow(s models.MSymbol, now int64) []any {
	return []any{
		s.Symbol, s.Description, s.CategoryName, s.Currency, s.CurrencyProfit, s.Precision,
		s.ContractSize, s.LotMin, s.LotMax, s.LotStep, now,
	}
}
