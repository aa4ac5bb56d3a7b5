//go:build !linux
// +build !linux

// File: sys/sys_stub.go
//
// Stub api.Sys for platforms without the raw poll/sendmsg surface.

package sys

import (
	"time"

	"github.com/kungyadami/libmemcached-konduck/api"
)

type stubSys struct{}

// New returns a stub whose calls report api.KindNotSupported.
func New() api.Sys { return stubSys{} }

func errNotSupported() error {
	return api.NewError(api.KindNotSupported, api.At(), "raw socket layer unavailable on this platform")
}

func (stubSys) Recv(int, []byte) (int, error)                  { return 0, errNotSupported() }
func (stubSys) Send(int, []byte, bool) (int, error)            { return 0, errNotSupported() }
func (stubSys) Sendmsg(int, [][]byte) (int, error)             { return 0, errNotSupported() }
func (stubSys) Poll([]api.PollFD, time.Duration) (int, error)  { return 0, errNotSupported() }
func (stubSys) SockErr(int) (int, error)                       { return 0, errNotSupported() }
func (stubSys) Shutdown(int, api.How) error                    { return errNotSupported() }
func (stubSys) Close(int) error                                { return errNotSupported() }
