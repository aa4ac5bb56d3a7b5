//go:build linux
// +build linux

// File: sys/sys_linux.go
//
// Linux api.Sys implementation over golang.org/x/sys/unix. Sends carry
// MSG_NOSIGNAL so a dead peer surfaces as EPIPE instead of a signal, and
// MSG_MORE when the caller hints that further data follows.

package sys

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/kungyadami/libmemcached-konduck/api"
)

type unixSys struct{}

// New returns the host platform implementation of api.Sys.
func New() api.Sys { return unixSys{} }

func (unixSys) Recv(fd int, p []byte) (int, error) {
	n, _, err := unix.Recvfrom(fd, p, unix.MSG_NOSIGNAL)
	return n, err
}

func (unixSys) Send(fd int, p []byte, more bool) (int, error) {
	flags := unix.MSG_NOSIGNAL
	if more {
		flags |= unix.MSG_MORE
	}
	return unix.SendmsgN(fd, p, nil, nil, flags)
}

func (unixSys) Sendmsg(fd int, parts [][]byte) (int, error) {
	return unix.SendmsgBuffers(fd, parts, nil, nil, unix.MSG_NOSIGNAL)
}

func (unixSys) Poll(fds []api.PollFD, timeout time.Duration) (int, error) {
	pfds := make([]unix.PollFd, len(fds))
	for i := range fds {
		pfds[i] = unix.PollFd{Fd: int32(fds[i].FD), Events: toUnixEvents(fds[i].Events)}
	}
	n, err := unix.Poll(pfds, int(timeout.Milliseconds()))
	for i := range fds {
		fds[i].REvents = fromUnixEvents(pfds[i].Revents)
	}
	return n, err
}

func (unixSys) SockErr(fd int) (int, error) {
	return unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
}

func (unixSys) Shutdown(fd int, how api.How) error {
	var h int
	switch how {
	case api.ShutRead:
		h = unix.SHUT_RD
	case api.ShutWrite:
		h = unix.SHUT_WR
	default:
		h = unix.SHUT_RDWR
	}
	return unix.Shutdown(fd, h)
}

func (unixSys) Close(fd int) error {
	return unix.Close(fd)
}

func toUnixEvents(ev api.Events) int16 {
	var out int16
	if ev&api.EventIn != 0 {
		out |= unix.POLLIN
	}
	if ev&api.EventOut != 0 {
		out |= unix.POLLOUT
	}
	return out
}

func fromUnixEvents(rev int16) api.Events {
	var out api.Events
	if rev&unix.POLLIN != 0 {
		out |= api.EventIn
	}
	if rev&unix.POLLOUT != 0 {
		out |= api.EventOut
	}
	if rev&unix.POLLERR != 0 {
		out |= api.EventErr
	}
	if rev&unix.POLLHUP != 0 {
		out |= api.EventHup
	}
	return out
}
