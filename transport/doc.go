// Package transport implements the command transport and batching layer for a
// single laboratory instrument reachable over a persistent TCP stream.
//
// The wire protocol is line oriented: commands and queries are plain text
// terminated by CR+LF, and a query's response is a single line terminated by
// LF (a stray CR before the LF is stripped). There is no framing beyond the
// terminator and no option negotiation; the stream is raw byte passthrough.
//
// # Command batching
//
// Outgoing commands are not written immediately. [Client.Enqueue] appends a
// command to a pending batch, and [Client.Flush] writes the whole batch as a
// single CRLF-joined write, minimizing round trips to the instrument.
// [Client.Query] always flushes the pending batch before writing its own
// query line, so the instrument observes every prior command before the query
// that may depend on them.
//
// Exactly one query may be outstanding at a time; the client does not
// pipeline queries. A Client is owned by a single logical thread of control
// and is not safe for concurrent use.
package transport
