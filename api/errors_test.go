package api

import (
	"errors"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageComposition(t *testing.T) {
	e := WrapError(KindIOFailure, "channel/read.go:42", syscall.ECONNRESET, "recv")
	msg := e.Error()
	assert.Contains(t, msg, "io failure")
	assert.Contains(t, msg, "recv")
	assert.Contains(t, msg, "connection reset")
	assert.Contains(t, msg, "channel/read.go:42")
}

func TestErrnoTravelsTheCauseChain(t *testing.T) {
	e := ErrnoError(At(), syscall.EPIPE, "send")
	assert.Equal(t, KindIOFailure, e.Kind)
	assert.ErrorIs(t, e, syscall.EPIPE)

	var errno syscall.Errno
	require.True(t, errors.As(e, &errno))
	assert.Equal(t, syscall.EPIPE, errno)
}

func TestAtTagIsStable(t *testing.T) {
	tag := At()
	// Two trailing path elements and a line number, nothing more.
	assert.Equal(t, 1, strings.Count(tag, "/"))
	assert.Equal(t, "api/errors_test.go", tag[:strings.IndexByte(tag, ':')])
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(NewError(KindTimeout, "x", "")))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, Continue(NewError(KindInProgress, "x", "")))
	assert.False(t, Continue(NewError(KindTimeout, "x", "")))
	assert.True(t, IsTimeout(NewError(KindTimeout, "x", "")))
	assert.False(t, IsTimeout(nil))
}
