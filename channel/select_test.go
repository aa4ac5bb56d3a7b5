package channel

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kungyadami/libmemcached-konduck/api"
	"github.com/kungyadami/libmemcached-konduck/fake"
)

// newTestSet builds n stream connections on one shared fake, with
// descriptors 10, 11, 12, ...
func newTestSet(t *testing.T, n int) ([]*Conn, *fake.Sys) {
	t.Helper()
	fs := fake.NewSys()
	conns := make([]*Conn, n)
	for i := range conns {
		conns[i] = NewConn(fs, 10+i, Stream, DefaultConfig())
	}
	return conns, fs
}

func TestSelectPrefersBufferedData(t *testing.T) {
	conns, fs := newTestSet(t, 3)
	conns[0].PushPending("req")
	conns[1].PushPending("req")
	seedInput(conns[2], []byte("VALUE foo 0 3\r\n"))

	got, err := SelectReadable(conns, DefaultConfig())
	require.NoError(t, err)
	assert.Same(t, conns[2], got)
	assert.Equal(t, 0, fs.CallCount(fake.OpPoll), "buffered data costs no syscall")
}

func TestSelectSingleCandidateSkipsPoll(t *testing.T) {
	conns, fs := newTestSet(t, 3)
	conns[1].PushPending("req")

	got, err := SelectReadable(conns, DefaultConfig())
	require.NoError(t, err)
	assert.Same(t, conns[1], got)
	assert.Equal(t, 0, fs.CallCount(fake.OpPoll))
}

func TestSelectNothingOwedReturnsNil(t *testing.T) {
	conns, fs := newTestSet(t, 3)

	got, err := SelectReadable(conns, DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, fs.CallCount(fake.OpPoll))
}

func TestSelectPollsAcrossCandidates(t *testing.T) {
	conns, fs := newTestSet(t, 3)
	for _, c := range conns {
		c.PushPending("req")
	}
	fs.QueuePollAt(1, api.EventIn, 1, nil)

	got, err := SelectReadable(conns, DefaultConfig())
	require.NoError(t, err)
	assert.Same(t, conns[1], got)
	assert.Equal(t, 1, fs.CallCount(fake.OpPoll))
}

func TestSelectPollTimeoutReturnsNil(t *testing.T) {
	conns, fs := newTestSet(t, 2)
	conns[0].PushPending("req")
	conns[1].PushPending("req")
	fs.QueuePoll(0, 0, nil)

	got, err := SelectReadable(conns, DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, fs.CallCount(fake.OpPoll))
}

func TestSelectPollFailureSurfaces(t *testing.T) {
	conns, fs := newTestSet(t, 2)
	conns[0].PushPending("req")
	conns[1].PushPending("req")
	fs.QueuePoll(0, 0, syscall.EBADF)

	got, err := SelectReadable(conns, DefaultConfig())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, api.KindIOFailure, api.KindOf(err))
	assert.ErrorIs(t, err, syscall.EBADF)
}

func TestSelectCapsPollCandidates(t *testing.T) {
	conns, fs := newTestSet(t, 5)
	for _, c := range conns {
		c.PushPending("req")
	}
	cfg := DefaultConfig()
	cfg.MaxPollCandidates = 2
	fs.QueuePollAt(1, api.EventIn, 1, nil)

	got, err := SelectReadable(conns, cfg)
	require.NoError(t, err)
	assert.Same(t, conns[1], got, "only the first two candidates entered the poll")
}

func TestSelectBufferedWinsPastCandidateCap(t *testing.T) {
	conns, fs := newTestSet(t, 5)
	for _, c := range conns {
		c.PushPending("req")
	}
	seedInput(conns[4], []byte("END\r\n"))
	cfg := DefaultConfig()
	cfg.MaxPollCandidates = 2

	got, err := SelectReadable(conns, cfg)
	require.NoError(t, err)
	assert.Same(t, conns[4], got)
	assert.Equal(t, 0, fs.CallCount(fake.OpPoll))
}
