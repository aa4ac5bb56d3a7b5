// File: channel/read.go
//
// Buffered read path: serve from the read buffer, refill from the socket
// when it runs dry, with the line-oriented and guaranteed-size variants
// the response parser is built on.

package channel

import (
	"github.com/valyala/bytebufferpool"

	"github.com/kungyadami/libmemcached-konduck/api"
)

// Read fills p from the connection, refilling the read buffer from the
// socket as needed, and returns the number of bytes copied.
func (c *Conn) Read(p []byte) (int, error) {
	if c.transport == Datagram {
		return 0, c.setError(api.NewError(api.KindNotSupported, api.At(),
			"buffered read on a datagram connection"))
	}
	if c.fd == api.InvalidFD {
		return 0, c.setError(api.NewError(api.KindConnectionFailure, api.At(),
			"read on an unconnected socket"))
	}

	copied := 0
	for copied < len(p) {
		if c.readCnt == 0 {
			if err := c.fill(); err != nil {
				return copied, err
			}
		}
		n := min(len(p)-copied, c.readCnt)
		copy(p[copied:], c.readBuf[c.readPos:c.readPos+n])
		c.readPos += n
		c.readCnt -= n
		copied += n
	}
	return copied, nil
}

// fill issues one non-blocking receive into the read buffer. Zero bytes
// means the peer performed an orderly close: whatever was consumed so
// far stays valid, but the connection is done. Transient conditions are
// retried, waiting on readability when the kernel has nothing yet.
func (c *Conn) fill() error {
	for {
		n, err := c.sys.Recv(c.fd, c.readBuf)
		if err != nil {
			switch api.ClassifyIO(err) {
			case api.OutcomeRetry:
				continue
			case api.OutcomeWouldBlock:
				if werr := c.waitReadable(); werr != nil {
					return werr
				}
				continue
			default:
				c.quit()
				return c.setError(api.ErrnoError(api.At(), err, "recv"))
			}
		}
		if n == 0 {
			c.quit()
			return c.setError(api.NewError(api.KindConnectionFailure, api.At(),
				"recv returned zero, peer has disconnected"))
		}
		c.readPos = 0
		c.readCnt = n
		c.readOcc = n
		c.bytesRead += uint64(n)
		return nil
	}
}

// ReadLine copies bytes into dst up to and including the '\n'
// terminator and returns the total copied. Filling dst without finding
// a terminator is a protocol error, never a silent truncation.
func (c *Conn) ReadLine(dst []byte) (int, error) {
	total := 0
	for {
		if c.readCnt == 0 {
			// Buffer is dry; pull one byte through the standard path so
			// the refill logic is not duplicated here.
			if _, err := c.Read(dst[total : total+1]); err != nil {
				if api.Continue(err) {
					c.quit()
					return total, c.setError(api.NewError(api.KindInProgress, api.At(),
						"line read could not make progress"))
				}
				return total, err
			}
			done := dst[total] == '\n'
			total++
			if done {
				return total, nil
			}
		}

		for c.readCnt > 0 && total < len(dst) {
			b := c.readBuf[c.readPos]
			c.readPos++
			c.readCnt--
			dst[total] = b
			total++
			if b == '\n' {
				return total, nil
			}
		}

		if total == len(dst) {
			return total, c.setError(api.NewError(api.KindProtocolError, api.At(),
				"line exceeds buffer without terminator"))
		}
	}
}

// SafeRead delivers exactly len(dst) bytes or fails. Non-terminal
// "retry the same call" results are looped over internally.
func (c *Conn) SafeRead(dst []byte) error {
	offset := 0
	for offset < len(dst) {
		var (
			n   int
			err error
		)
		for {
			n, err = c.Read(dst[offset:])
			if !api.Continue(err) {
				break
			}
		}
		if err != nil {
			return err
		}
		offset += n
	}
	return nil
}

// Slurp drains and discards everything the peer has sent, waiting for
// more until the connection dies. It is used to clear a connection whose
// outstanding responses are no longer wanted. The return is always a
// failure: connection failure once the peer closes or errors, or an
// in-progress status when the readiness wait gives out first.
func (c *Conn) Slurp() error {
	if c.fd == api.InvalidFD {
		return c.setError(api.NewError(api.KindConnectionFailure, api.At(),
			"slurp on an unconnected socket"))
	}

	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)
	if cap(scratch.B) < MaxBuffer {
		scratch.B = make([]byte, MaxBuffer)
	}
	buf := scratch.B[:MaxBuffer]

	for {
		n, err := c.sys.Recv(c.fd, buf)
		if err != nil {
			switch api.ClassifyIO(err) {
			case api.OutcomeRetry:
				continue
			case api.OutcomeWouldBlock:
				if werr := c.waitReadable(); werr == nil {
					continue
				}
				return api.NewError(api.KindInProgress, api.At(),
					"nothing left to drain within the deadline")
			default:
				return api.NewError(api.KindConnectionFailure, api.At(),
					"connection failed while draining")
			}
		}
		if n == 0 {
			return api.NewError(api.KindConnectionFailure, api.At(),
				"peer closed while draining")
		}
	}
}
