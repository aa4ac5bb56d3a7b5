// File: channel/wait.go
//
// Readiness gate: one bounded, classified poll on a single descriptor.

package channel

import (
	"syscall"

	"github.com/kungyadami/libmemcached-konduck/api"
)

// WaitForRead blocks until the connection is readable, the configured
// timeout elapses, or the connection fails.
func (c *Conn) WaitForRead() error { return c.ioWait(false) }

// WaitForWrite flushes any pending output backlog and then blocks until
// the connection is writable.
func (c *Conn) WaitForWrite() error { return c.ioWait(true) }

func (c *Conn) waitReadable() error { return c.ioWait(false) }
func (c *Conn) waitWritable() error { return c.ioWait(true) }

// ioWait waits for the requested readiness with bounded retries.
//
// Awaiting writability while earlier output sits unflushed would wedge:
// the backlog is purged first and a purge failure is terminal. A zero
// configured timeout is an immediate timeout; not every platform treats
// a zero poll timeout that way, so it is made explicit here. Retries
// cover signal interruption and the spurious case where the descriptor
// reports an error condition but the queried socket error is zero.
func (c *Conn) ioWait(writable bool) error {
	if writable {
		if err := c.purgeOutput(); err != nil {
			return c.setError(api.NewError(api.KindFailure, api.At(),
				"cannot await writability with unflushed output"))
		}
	}

	interest := api.EventIn
	if writable {
		interest = api.EventOut
		c.writeWaits++
	} else {
		c.readWaits++
	}

	if c.cfg.PollTimeout == 0 {
		return c.setError(api.NewError(api.KindTimeout, api.At(),
			"poll timeout is configured to zero"))
	}

	fds := []api.PollFD{{FD: c.fd, Events: interest}}
	prev := c.lastErr
	for attempt := 0; attempt < c.cfg.MaxPollRetries; attempt++ {
		fds[0].REvents = 0
		n, err := c.sys.Poll(fds, c.cfg.PollTimeout)
		if err != nil {
			switch api.ClassifyPoll(err) {
			case api.OutcomeRetry:
				continue
			case api.OutcomeResource:
				c.setError(api.WrapError(api.KindMemoryAllocationFailure, api.At(), err,
					"poll ran out of kernel resources"))
			default:
				c.setError(api.ErrnoError(api.At(), err, "poll"))
			}
			break
		}

		if n == 0 {
			return c.setError(api.NewError(api.KindTimeout, api.At(),
				"no descriptor became ready"))
		}

		rev := fds[0].REvents
		if rev&(api.EventIn|api.EventOut) != 0 {
			return nil
		}
		if rev&api.EventHup != 0 {
			c.quit()
			return c.setError(api.NewError(api.KindConnectionFailure, api.At(),
				"poll detected hang up"))
		}
		if rev&api.EventErr != 0 {
			soerr, gerr := c.sys.SockErr(c.fd)
			if gerr == nil && soerr == 0 {
				// Error flagged but no error pending: spurious wakeup.
				continue
			}
			errno := syscall.EINVAL
			if gerr == nil {
				errno = syscall.Errno(soerr)
			}
			c.quit()
			return c.setError(api.ErrnoError(api.At(), errno,
				"poll reported a socket error"))
		}
		return c.setError(api.NewError(api.KindFailure, api.At(),
			"poll returned an unhandled event"))
	}

	c.quit()
	if c.lastErr != nil && c.lastErr != prev {
		return c.lastErr
	}
	return c.setError(api.NewError(api.KindConnectionFailure, api.At(),
		"readiness wait attempts exhausted"))
}
