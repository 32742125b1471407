package interfaces

import (
	"context"

	"xapi-connector/src/decoder"
	"xapi-connector/src/models"
)

// -----------------------------------------------------------------------------
// IXapiClient is the part of xapi.Client the gateway depends on.
// -----------------------------------------------------------------------------

type IXapiClient interface {
	IsLoggedIn() bool

	Ping(ctx context.Context) (bool, error)

	// -----------------------------------------------------------------------------

	GetServerTime(ctx context.Context) (models.MServerTime, error)
	GetVersion(ctx context.Context) (models.MVersion, error)
	GetAllSymbols(ctx context.Context) ([]models.MSymbol, error)
	GetSymbol(ctx context.Context, symbol string) (models.MSymbol, error)
	GetTickPrices(ctx context.Context, level int, symbols []string, timestamp int64) (models.MTickPrices, error)
	GetTrades(ctx context.Context, openedOnly bool) ([]models.MTrade, error)
	GetMarginLevel(ctx context.Context) (models.MMarginLevel, error)

	// -----------------------------------------------------------------------------

	// Call runs any command of the command table by name.
	Call(ctx context.Context, name string, args map[string]any) (decoder.Payload, error)
}
