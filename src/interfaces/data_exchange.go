package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger publishes poll results to gateway clients (snapshot + push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast merges a batch into the snapshot and pushes it to WebSocket clients.
	Broadcast(payload interface{})

	// -----------------------------------------------------------------------------
	// UpdateAllDatas merges into the snapshot served to new clients without broadcasting.
	UpdateAllDatas(data interface{})

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
