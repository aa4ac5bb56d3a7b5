// File: channel/conn.go
//
// Connection state: socket descriptor, fixed-capacity buffers, counters,
// UDP message id, pending-response queue and lifecycle transitions.

package channel

import (
	"errors"
	"syscall"

	"github.com/eapache/queue"

	"github.com/kungyadami/libmemcached-konduck/api"
)

// Transport tags a connection as stream- or datagram-oriented. Write and
// read paths dispatch on it; the buffered paths apply to streams, the
// framed send path to datagrams.
type Transport uint8

const (
	Stream Transport = iota
	Datagram
)

// State is the connection lifecycle position.
type State uint8

const (
	StateNew State = iota
	StateConnected
	StateShuttingDown
	StateClosed
)

// ResponseConsumer is invoked while buffered input is drained during a
// write-blocked flush. It receives a bounded scratch buffer to read the
// pending response into; interpreting the bytes is the consumer's job.
type ResponseConsumer func(c *Conn, scratch []byte) error

// Counters is a snapshot of a connection's I/O accounting.
type Counters struct {
	BytesSent  uint64
	BytesRead  uint64
	ReadWaits  uint64
	WriteWaits uint64
}

// Conn is one server connection. It is exclusively owned by the caller;
// nothing here locks. The descriptor comes from the resolver collaborator
// already connected and in non-blocking mode.
type Conn struct {
	sys api.Sys
	cfg Config

	fd        int
	transport Transport
	state     State

	readBuf []byte // fixed capacity MaxBuffer
	readPos int    // start of unread data
	readCnt int    // unread byte count
	readOcc int    // occupied length; readCnt <= readOcc <= MaxBuffer

	writeBuf []byte // fixed capacity MaxBuffer
	writeOff int    // bytes pending, not yet sent

	bytesSent  uint64
	bytesRead  uint64
	readWaits  uint64
	writeWaits uint64

	msgID        uint16 // per-datagram sequence id, wraps at width
	shuttingDown bool

	pending   *queue.Queue // responses the peer still owes, FIFO
	consumers []ResponseConsumer

	flushing   bool // guards against flush re-entering itself via the wait path
	processing bool // guards against consumer re-entry

	lastErr *api.Error

	versionMajor, versionMinor, versionMicro uint8
}

// NewConn wraps an established, non-blocking descriptor.
func NewConn(s api.Sys, fd int, transport Transport, cfg Config) *Conn {
	c := &Conn{
		sys:       s,
		cfg:       cfg,
		fd:        fd,
		transport: transport,
		state:     StateConnected,
		readBuf:   make([]byte, MaxBuffer),
		writeBuf:  make([]byte, MaxBuffer),
		pending:   queue.New(),
	}
	if transport == Datagram {
		c.writeOff = DatagramHeaderSize
	}
	c.versionMajor, c.versionMinor, c.versionMicro = 255, 255, 255
	return c
}

// FD returns the descriptor, or api.InvalidFD when not connected.
func (c *Conn) FD() int { return c.fd }

// Transport returns the connection's transport tag.
func (c *Conn) Transport() Transport { return c.transport }

// State returns the lifecycle position.
func (c *Conn) State() State { return c.state }

// Buffered returns the number of unread bytes held in the read buffer.
func (c *Conn) Buffered() int { return c.readCnt }

// Counters returns a snapshot of the connection's I/O accounting.
func (c *Conn) Counters() Counters {
	return Counters{
		BytesSent:  c.bytesSent,
		BytesRead:  c.bytesRead,
		ReadWaits:  c.readWaits,
		WriteWaits: c.writeWaits,
	}
}

// LastError returns the most recently recorded fatal condition, if any.
func (c *Conn) LastError() error {
	if c.lastErr == nil {
		return nil
	}
	return c.lastErr
}

// Adopt installs a fresh descriptor after a reset, moving the lifecycle
// back to connected. The resolver collaborator calls this on reconnect.
func (c *Conn) Adopt(fd int) {
	c.fd = fd
	c.state = StateConnected
}

// AddConsumer appends a response consumer. Consumers run in registration
// order and stop on the first failure.
func (c *Conn) AddConsumer(fn ResponseConsumer) {
	c.consumers = append(c.consumers, fn)
}

// PushPending records an in-flight request token; the peer owes one more
// response on this connection.
func (c *Conn) PushPending(token any) { c.pending.Add(token) }

// PopPending removes and returns the oldest in-flight token.
func (c *Conn) PopPending() (any, bool) {
	if c.pending.Length() == 0 {
		return nil, false
	}
	return c.pending.Remove(), true
}

// PendingCount returns how many responses the peer still owes.
func (c *Conn) PendingCount() int { return c.pending.Length() }

// SetVersion records the peer's reported version triple.
func (c *Conn) SetVersion(major, minor, micro uint8) {
	c.versionMajor, c.versionMinor, c.versionMicro = major, minor, micro
}

// Version returns the peer's version triple; 255s mean unknown.
func (c *Conn) Version() (major, minor, micro uint8) {
	return c.versionMajor, c.versionMinor, c.versionMicro
}

// StartClose half-closes the write side and marks the connection as
// shutting down. The descriptor is not released.
func (c *Conn) StartClose() {
	if c.fd != api.InvalidFD {
		_ = c.sys.Shutdown(c.fd, api.ShutWrite)
		c.shuttingDown = true
		c.state = StateShuttingDown
	}
}

// ResetSocket releases the descriptor unconditionally.
func (c *Conn) ResetSocket() {
	if c.fd != api.InvalidFD {
		_ = c.sys.Close(c.fd)
		c.fd = api.InvalidFD
		c.state = StateClosed
	}
}

// CloseSocket shuts the socket down, releases it, and restores the
// connection to a fresh reusable state. When a half-close already went
// out only the read side is shut down. A "not connected" error from the
// shutdown call is benign; the reset happens regardless.
func (c *Conn) CloseSocket() error {
	var shutErr error
	if c.fd != api.InvalidFD {
		how := api.ShutReadWrite
		if c.shuttingDown {
			how = api.ShutRead
		}
		if err := c.sys.Shutdown(c.fd, how); err != nil && !isNotConnected(err) {
			shutErr = err
		}
		c.ResetSocket()
	}
	c.resetState()
	return shutErr
}

// quit is the abrupt teardown used when an operation hits a fatal
// condition mid-flight.
func (c *Conn) quit() { _ = c.CloseSocket() }

// resetState zeroes buffer cursors, counters and flags. A datagram
// connection keeps its write offset at the header size so the framer
// always has its reserved slot. The last recorded error survives the
// reset so callers can still inspect it.
func (c *Conn) resetState() {
	c.state = StateNew
	c.readPos = 0
	c.readCnt = 0
	c.readOcc = 0
	c.writeOff = 0
	if c.transport == Datagram {
		c.writeOff = DatagramHeaderSize
	}
	c.bytesSent = 0
	c.bytesRead = 0
	c.readWaits = 0
	c.writeWaits = 0
	c.shuttingDown = false
	c.pending = queue.New()
	// Stale version info must not leak onto whatever server this
	// connection is pointed at next.
	c.versionMajor, c.versionMinor, c.versionMicro = 255, 255, 255
}

// setError records a structured error, feeds the sink and logger, and
// returns it for direct propagation.
func (c *Conn) setError(e *api.Error) error {
	c.lastErr = e
	if c.cfg.ErrorSink != nil {
		c.cfg.ErrorSink(e)
	}
	if c.cfg.Logger != nil {
		c.cfg.Logger.Printf("channel: fd=%d %v", c.fd, e)
	}
	return e
}

func isNotConnected(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ENOTCONN
}
