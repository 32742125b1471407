package interfaces

import "time"

// -----------------------------------------------------------------------------
// ICommandObserver is told about every request/response exchange.
// -----------------------------------------------------------------------------

type ICommandObserver interface {
	ObserveCommand(command string, duration time.Duration, err error)
}
