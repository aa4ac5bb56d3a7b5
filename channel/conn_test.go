package channel

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungyadami/libmemcached-konduck/api"
	"github.com/kungyadami/libmemcached-konduck/fake"
)

func TestCloseSocketRestoresFreshState(t *testing.T) {
	c, fs := newTestConn(t, Stream)
	seedInput(c, []byte("leftover"))
	_, err := c.Write([]byte("pending"), false)
	require.NoError(t, err)
	c.PushPending("req")
	c.SetVersion(1, 6, 21)
	c.bytesRead = 99
	c.readWaits = 3

	require.NoError(t, c.CloseSocket())

	assert.Equal(t, api.InvalidFD, c.FD())
	assert.Equal(t, StateNew, c.State())
	assert.Equal(t, 0, c.Buffered())
	assert.Equal(t, 0, c.writeOff)
	assert.Equal(t, 0, c.PendingCount())
	assert.Equal(t, Counters{}, c.Counters())
	major, minor, micro := c.Version()
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{major, minor, micro})
	assert.Equal(t, []int{testFD}, fs.ClosedFDs())
}

func TestCloseSocketKeepsDatagramHeaderSlot(t *testing.T) {
	c, _ := newTestConn(t, Datagram)
	require.NoError(t, c.CloseSocket())
	assert.Equal(t, DatagramHeaderSize, c.writeOff)
}

func TestCloseSocketShutsBothSidesWhenNotHalfClosed(t *testing.T) {
	c, fs := newTestConn(t, Stream)
	require.NoError(t, c.CloseSocket())
	assert.Equal(t, []api.How{api.ShutReadWrite}, fs.Shutdowns())
}

func TestStartCloseThenCloseSocketShutsReadSideOnly(t *testing.T) {
	c, fs := newTestConn(t, Stream)

	c.StartClose()
	assert.Equal(t, StateShuttingDown, c.State())

	require.NoError(t, c.CloseSocket())
	assert.Equal(t, []api.How{api.ShutWrite, api.ShutRead}, fs.Shutdowns())
	assert.Equal(t, StateNew, c.State())
}

func TestCloseSocketSwallowsNotConnected(t *testing.T) {
	c, fs := newTestConn(t, Stream)
	fs.SetShutdownErr(syscall.ENOTCONN)

	require.NoError(t, c.CloseSocket())
	assert.Equal(t, api.InvalidFD, c.FD())
}

func TestCloseSocketReportsShutdownFailure(t *testing.T) {
	c, fs := newTestConn(t, Stream)
	fs.SetShutdownErr(syscall.EBADF)

	err := c.CloseSocket()
	require.Error(t, err)
	// The descriptor is released and the state reset regardless.
	assert.Equal(t, api.InvalidFD, c.FD())
	assert.Equal(t, StateNew, c.State())
}

func TestCloseSocketOnUnconnectedIsHarmless(t *testing.T) {
	c, fs := newTestConn(t, Stream)
	require.NoError(t, c.CloseSocket())
	require.NoError(t, c.CloseSocket())
	assert.Equal(t, 1, fs.CallCount(fake.OpShutdown))
	assert.Equal(t, 1, fs.CallCount(fake.OpClose))
}

func TestLastErrorSurvivesClose(t *testing.T) {
	c, fs := newTestConn(t, Stream)
	fs.QueueRecvErr(syscall.ECONNRESET)

	_, err := c.Read(make([]byte, 16))
	require.Error(t, err)
	assert.Equal(t, StateNew, c.State(), "fatal read tears the connection down")
	assert.ErrorIs(t, c.LastError(), syscall.ECONNRESET)
}

func TestAdoptReconnects(t *testing.T) {
	c, fs := newTestConn(t, Stream)
	require.NoError(t, c.CloseSocket())

	c.Adopt(42)
	assert.Equal(t, 42, c.FD())
	assert.Equal(t, StateConnected, c.State())

	_, err := c.Write([]byte("hello"), true)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), fs.Sent())
}

func TestPendingQueueIsFIFO(t *testing.T) {
	c, _ := newTestConn(t, Stream)
	c.PushPending("a")
	c.PushPending("b")
	c.PushPending("c")
	assert.Equal(t, 3, c.PendingCount())

	got, ok := c.PopPending()
	require.True(t, ok)
	assert.Equal(t, "a", got)
	got, ok = c.PopPending()
	require.True(t, ok)
	assert.Equal(t, "b", got)

	_, _ = c.PopPending()
	_, ok = c.PopPending()
	assert.False(t, ok)
}

func TestResetSocketReleasesDescriptorOnly(t *testing.T) {
	c, fs := newTestConn(t, Stream)
	c.ResetSocket()
	assert.Equal(t, api.InvalidFD, c.FD())
	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, 0, fs.CallCount(fake.OpShutdown))
	assert.Equal(t, []int{testFD}, fs.ClosedFDs())
}

func TestCloseAllAggregatesFailures(t *testing.T) {
	good1, _ := newTestConn(t, Stream)
	bad, badFS := newTestConn(t, Stream)
	badFS.SetShutdownErr(syscall.EBADF)
	good2, _ := newTestConn(t, Datagram)

	err := CloseAll([]*Conn{good1, bad, good2})
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.EBADF)

	for _, c := range []*Conn{good1, bad, good2} {
		assert.Equal(t, api.InvalidFD, c.FD())
		assert.Equal(t, StateNew, c.State())
	}
}

func TestCloseAllCleanSet(t *testing.T) {
	a, _ := newTestConn(t, Stream)
	b, _ := newTestConn(t, Stream)
	require.NoError(t, CloseAll([]*Conn{a, b}))
}
