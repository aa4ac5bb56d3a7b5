// File: channel/vector.go
//
// Scatter-gather writer: a logical request assembled from discontiguous
// parts, delivered all-or-nothing.

package channel

import "github.com/kungyadami/libmemcached-konduck/api"

// Vector is one part of a multi-part request. For datagram sends the
// first part is reserved for the frame header and must arrive empty.
type Vector struct {
	Data []byte
}

// Writev sends every non-empty part through the buffered write path in
// order, then flushes when withFlush is set. A failure on any part
// short-circuits the call. The caller assembled one logical message from
// these parts, so a partial transmission is a failure even when no error
// condition was recorded along the way.
func (c *Conn) Writev(parts []Vector, withFlush bool) error {
	requested := 0
	written := 0
	for i := range parts {
		requested += len(parts[i].Data)
		if len(parts[i].Data) == 0 {
			continue
		}
		n, err := c.Write(parts[i].Data, false)
		if err != nil {
			return err
		}
		written += n
	}

	if withFlush {
		if err := c.Flush(); err != nil {
			return err
		}
	}

	if written != requested {
		return c.setError(api.NewError(api.KindWriteFailure, api.At(),
			"vector write was partial"))
	}
	return nil
}

// Vdo dispatches one assembled request over the connection's transport:
// datagram connections frame and send it as a single datagram, stream
// connections go through the scatter-gather writer. Incrementing the
// pending-response count for reply-expecting requests is the caller's
// side of the bargain, via PushPending.
func (c *Conn) Vdo(parts []Vector, withFlush bool) error {
	if c.transport == Datagram {
		return c.SendDatagram(parts)
	}
	return c.Writev(parts, withFlush)
}
