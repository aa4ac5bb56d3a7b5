// Package channel is the per-connection transport and buffering core of
// the cache client: fixed-capacity read/write buffering with retry-safe
// non-blocking socket I/O, readiness waiting with bounded retries, a
// scatter-gather writer, UDP datagram framing with per-message sequence
// ids, and a readable-connection selector across many servers.
//
// The package owns no sockets. A resolver collaborator establishes the
// connection and hands over a live descriptor; this core detects and
// reports failure of that descriptor but never reconnects. Payload bytes
// are delivered raw; parsing belongs to the protocol collaborator.
//
// The model is single-threaded and synchronous: every operation either
// completes against in-memory buffers or blocks inside the readiness
// wait, bounded by the configured timeout. One goroutine owns a
// connection at a time; the caller enforces that boundary.
package channel
