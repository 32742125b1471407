package interfaces

import "context"

// -----------------------------------------------------------------------------
// ITransport is one message-oriented connection to an xAPI endpoint.
// -----------------------------------------------------------------------------

type ITransport interface {

	// Open dials the endpoint. It is only called on a closed transport.
	Open(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// WriteMessage sends one complete request.
	WriteMessage(ctx context.Context, msg []byte) error

	// -----------------------------------------------------------------------------

	// ReadMessage blocks until one complete message has been received and
	// returns it without its framing.
	ReadMessage(ctx context.Context) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Close releases the underlying connection.
	Close() error

	// -----------------------------------------------------------------------------

	// Address is used in logs and errors.
	Address() string
}
