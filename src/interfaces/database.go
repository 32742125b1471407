package interfaces

import "xapi-connector/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the local journal.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTicks inserts a batch of quotes, ignoring ones already stored.
	SaveTicks(ticks []models.MTick, fetchedAt int64) error

	// -----------------------------------------------------------------------------

	// SaveTrades upserts trades by order number.
	SaveTrades(trades []models.MTrade) error

	// -----------------------------------------------------------------------------

	// SaveSymbols upserts the symbol catalogue.
	SaveSymbols(symbols []models.MSymbol) error

	// -----------------------------------------------------------------------------

	// LatestTicks returns up to limit most recent quotes for a symbol, newest first.
	LatestTicks(symbol string, limit int) ([]models.MTick, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
