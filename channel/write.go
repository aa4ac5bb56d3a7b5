// File: channel/write.go
//
// Buffered write path. Caller bytes accumulate in the fixed write buffer
// and go to the kernel when the buffer fills or a flush is requested.
// Back-pressure first tries to drain inbound data; only then does the
// path wait on writability.

package channel

import (
	"github.com/valyala/bytebufferpool"

	"github.com/kungyadami/libmemcached-konduck/api"
)

// Write copies p into the write buffer, flushing whenever it reaches
// capacity, and once more at the end when flushNow is set. It returns
// the number of bytes accepted; on success that is len(p). A zero-length
// write with flushNow forces delivery of previously buffered bytes.
//
// A flushNow of false hints the kernel that more data follows, letting
// it coalesce small writes.
func (c *Conn) Write(p []byte, flushNow bool) (int, error) {
	if c.transport == Datagram {
		return 0, c.setError(api.NewError(api.KindNotSupported, api.At(),
			"buffered write on a datagram connection"))
	}
	if c.fd == api.InvalidFD {
		return 0, c.setError(api.NewError(api.KindConnectionFailure, api.At(),
			"write on an unconnected socket"))
	}

	total := len(p)
	for len(p) > 0 {
		n := min(MaxBuffer-c.writeOff, len(p))
		copy(c.writeBuf[c.writeOff:], p[:n])
		c.writeOff += n
		p = p[n:]

		if c.writeOff == MaxBuffer {
			if err := c.flush(flushNow); err != nil {
				return total - len(p), err
			}
		}
	}

	if flushNow {
		if err := c.flush(true); err != nil {
			return total, err
		}
	}
	return total, nil
}

// Flush forces delivery of buffered-but-unsent bytes. Flushing an empty
// buffer is a no-op.
func (c *Conn) Flush() error {
	_, err := c.Write(nil, true)
	return err
}

// flush drives the pending write-buffer contents into the kernel.
//
// Buffered input is drained first: the peer may itself be blocked on
// write, waiting for us to read, and sending into that standoff
// deadlocks both sides. On back-pressure the input buffer is repacked or
// processed before any writability wait, for the same reason. A
// readiness timeout is non-fatal; the unsent tail stays buffered and the
// caller may retry. Every other failure closes the connection.
func (c *Conn) flush(flushNow bool) error {
	if c.flushing {
		return nil
	}
	c.flushing = true
	defer func() { c.flushing = false }()

	if c.readCnt > 0 {
		c.processInput()
	}

	sent := 0
	remaining := c.writeOff
	for remaining > 0 {
		n, err := c.sys.Send(c.fd, c.writeBuf[sent:sent+remaining], !flushNow)
		if err != nil {
			switch api.ClassifyIO(err) {
			case api.OutcomeNoBufs, api.OutcomeRetry:
				continue

			case api.OutcomeWouldBlock:
				// The send may be blocked because our input buffer is
				// full. Make room and retry before waiting.
				if c.repackInput() || c.processInput() {
					continue
				}
				werr := c.waitWritable()
				if werr == nil {
					continue
				}
				if api.IsTimeout(werr) {
					copy(c.writeBuf, c.writeBuf[sent:sent+remaining])
					c.writeOff = remaining
					return werr
				}
				c.quit()
				return c.setError(api.ErrnoError(api.At(), err,
					"send blocked and the readiness wait failed"))

			default:
				c.quit()
				return c.setError(api.ErrnoError(api.At(), err, "send"))
			}
		}
		if n <= 0 {
			c.quit()
			return c.setError(api.NewError(api.KindWriteFailure, api.At(),
				"send made no progress"))
		}
		c.bytesSent += uint64(n)
		sent += n
		remaining -= n
	}

	c.writeOff = 0
	return nil
}

// purgeOutput flushes any buffered backlog before a writability wait.
// When called from inside flush itself the guard makes it a no-op.
func (c *Conn) purgeOutput() error {
	if c.flushing {
		return nil
	}
	return c.flush(true)
}

// repackInput compacts unread input to the front of the read buffer and
// grabs whatever the peer has ready, without blocking. It reports
// whether any new bytes arrived.
func (c *Conn) repackInput() bool {
	if c.readPos != 0 {
		copy(c.readBuf, c.readBuf[c.readPos:c.readPos+c.readCnt])
		c.readPos = 0
		c.readOcc = c.readCnt
	}
	if c.readOcc == MaxBuffer {
		return false
	}

	for {
		n, err := c.sys.Recv(c.fd, c.readBuf[c.readOcc:])
		if err != nil {
			switch api.ClassifyIO(err) {
			case api.OutcomeRetry:
				continue
			case api.OutcomeWouldBlock, api.OutcomeNoBufs:
				// Nothing ready; that is fine here.
			default:
				c.setError(api.ErrnoError(api.At(), err, "recv during repack"))
			}
			return false
		}
		if n == 0 {
			c.setError(api.NewError(api.KindConnectionFailure, api.At(),
				"peer closed while repacking input"))
			return false
		}
		c.readCnt += n
		c.readOcc += n
		return true
	}
}

// processInput hands buffered responses to the registered consumers,
// in order, stopping at the first failure. It reports whether the
// consumers ran. Re-entry from a consumer's own read path is refused.
func (c *Conn) processInput() bool {
	if len(c.consumers) == 0 || c.readCnt == 0 || c.processing {
		return false
	}
	c.processing = true
	defer func() { c.processing = false }()

	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)
	if cap(scratch.B) < CommandScratchSize {
		scratch.B = make([]byte, CommandScratchSize)
	}
	buf := scratch.B[:CommandScratchSize]

	for _, consume := range c.consumers {
		if err := consume(c, buf); err != nil {
			break
		}
	}
	return true
}
