package transport

import "errors"

var (
	// ErrConnection indicates a transport-level failure: dial refusal, a
	// broken stream, or a write against a dead peer. Unrecoverable for the
	// current run.
	ErrConnection = errors.New("transport: connection error")

	// ErrTimeout indicates that a query's response line was not terminated
	// within the allowed time.
	ErrTimeout = errors.New("transport: timeout")

	// ErrProtocol indicates an empty or malformed response line.
	ErrProtocol = errors.New("transport: protocol error")

	// ErrClosed indicates the client has been closed, or has suppressed
	// further I/O after observing an unrecoverable error.
	ErrClosed = errors.New("transport: client closed")

	// ErrNotConnected indicates an operation that requires an established
	// connection was attempted before Connect.
	ErrNotConnected = errors.New("transport: not connected")
)
