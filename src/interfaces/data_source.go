package interfaces

import (
	"context"
	"sync"

	"xapi-connector/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource interface for polling quotes from the trading server.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchUpdateData polls once and returns only quotes not seen before.
	FetchUpdateData(ctx context.Context) (models.MTickBatch, error)

	// -----------------------------------------------------------------------------

	// UpdateSymbols updates the list of symbols being monitored
	UpdateSymbols(symbols []string) error

	// -----------------------------------------------------------------------------

	// Start begins the polling loop
	// ctx: controls the lifecycle (cancellation stops the source)
	// outputChan: channel to push batches to
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, outputChan chan<- models.MTickBatch, wg *sync.WaitGroup) error
}
