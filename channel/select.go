// File: channel/select.go
//
// Readable-connection selection across a server set, and aggregate
// teardown of the whole set.

package channel

import (
	"github.com/hashicorp/go-multierror"

	"github.com/kungyadami/libmemcached-konduck/api"
)

// SelectReadable returns a connection that can be read right now, or nil
// when none becomes ready within the configured timeout.
//
// Connections already holding unread buffered bytes win immediately, no
// syscall spent. Failing that, connections still owed a response are
// polled together, capped at cfg.MaxPollCandidates; with fewer than two
// such candidates the poll is skipped entirely, since polling a single
// descriptor is not worth the syscall.
func SelectReadable(conns []*Conn, cfg Config) (*Conn, error) {
	fds := make([]api.PollFD, 0, min(len(conns), cfg.MaxPollCandidates))
	candidates := make([]*Conn, 0, cap(fds))

	for _, c := range conns {
		if c.readCnt > 0 {
			return c, nil
		}
		if c.PendingCount() > 0 && len(candidates) < cfg.MaxPollCandidates {
			fds = append(fds, api.PollFD{FD: c.fd, Events: api.EventIn})
			candidates = append(candidates, c)
		}
	}

	if len(candidates) < 2 {
		for _, c := range conns {
			if c.PendingCount() > 0 {
				return c, nil
			}
		}
		return nil, nil
	}

	n, err := candidates[0].sys.Poll(fds, cfg.PollTimeout)
	if err != nil {
		return nil, api.ErrnoError(api.At(), err, "poll across candidates")
	}
	if n == 0 {
		return nil, nil
	}

	for i := range fds {
		if fds[i].REvents&api.EventIn == 0 {
			continue
		}
		for _, c := range conns {
			if c.fd == fds[i].FD {
				return c, nil
			}
		}
	}
	return nil, nil
}

// CloseAll tears down every connection in the set, aggregating whatever
// shutdown errors surface. Each connection ends up reset to a fresh
// state regardless.
func CloseAll(conns []*Conn) error {
	var result *multierror.Error
	for _, c := range conns {
		if err := c.CloseSocket(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
