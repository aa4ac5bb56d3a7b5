package channel

import (
	"testing"

	"github.com/kungyadami/libmemcached-konduck/fake"
)

const testFD = 7

func newTestConn(t *testing.T, transport Transport) (*Conn, *fake.Sys) {
	t.Helper()
	fs := fake.NewSys()
	return NewConn(fs, testFD, transport, DefaultConfig()), fs
}

// seedInput places unread bytes into the read buffer as if a previous
// refill had left them there.
func seedInput(c *Conn, data []byte) {
	copy(c.readBuf, data)
	c.readPos = 0
	c.readCnt = len(data)
	c.readOcc = len(data)
}
