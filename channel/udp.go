// File: channel/udp.go
//
// Datagram framing: every outbound UDP message carries a fixed-size
// header with a per-connection sequence id so the peer can reassemble
// and order what arrives.

package channel

import (
	"encoding/binary"

	"github.com/kungyadami/libmemcached-konduck/api"
)

// DatagramHeaderSize is the fixed prefix stamped on every UDP message:
// message id, fragment sequence, fragment total and a reserved word,
// each a big-endian uint16.
const DatagramHeaderSize = 8

// SendDatagram frames parts and sends them as one kernel datagram. The
// first part slot is reserved for the header; a populated slot means the
// vector was not assembled for UDP and is rejected outright.
//
// UDP is best effort. The send is attempted a bounded number of times
// while the kernel reports neither success nor a definitive error; a
// datagram too large to send will never fit and fails immediately; and
// exhausting the attempts without a verdict counts as success, since the
// caller cannot assume delivery either way.
func (c *Conn) SendDatagram(parts []Vector) error {
	if c.transport != Datagram {
		return c.setError(api.NewError(api.KindNotSupported, api.At(),
			"datagram send on a stream connection"))
	}
	if len(parts) == 0 || len(parts[0].Data) != 0 {
		return c.setError(api.NewError(api.KindNotSupported, api.At(),
			"vector was not set up for the datagram header"))
	}

	c.msgID++
	hdr := c.writeBuf[:DatagramHeaderSize]
	binary.BigEndian.PutUint16(hdr[0:2], c.msgID)
	binary.BigEndian.PutUint16(hdr[2:4], 0) // fragment sequence
	binary.BigEndian.PutUint16(hdr[4:6], 1) // fragments total
	binary.BigEndian.PutUint16(hdr[6:8], 0) // reserved
	parts[0].Data = hdr

	bufs := make([][]byte, len(parts))
	for i := range parts {
		bufs[i] = parts[i].Data
	}

	for attempt := 0; attempt < c.cfg.MaxDatagramAttempts; attempt++ {
		n, err := c.sys.Sendmsg(c.fd, bufs)
		if err != nil {
			if api.ClassifyIO(err) == api.OutcomeTooLarge {
				return c.setError(api.WrapError(api.KindWriteFailure, api.At(), err,
					"datagram exceeds the transport limit"))
			}
			return c.setError(api.ErrnoError(api.At(), err, "sendmsg"))
		}
		if n > 0 {
			return nil
		}
	}
	return nil
}

// MessageID returns the id stamped on the most recent datagram.
func (c *Conn) MessageID() uint16 { return c.msgID }
