// Package fake provides a scripted api.Sys for testing and development.
// Every call is recorded in order, and each operation pops from its own
// result queue; an empty queue yields a predictable default, so tests
// only script the steps they care about.
package fake

import (
	"sync"
	"syscall"
	"time"

	"github.com/kungyadami/libmemcached-konduck/api"
)

// Op names a recorded syscall.
type Op string

const (
	OpRecv     Op = "recv"
	OpSend     Op = "send"
	OpSendmsg  Op = "sendmsg"
	OpPoll     Op = "poll"
	OpSockErr  Op = "sockerr"
	OpShutdown Op = "shutdown"
	OpClose    Op = "close"
)

// Call is one recorded syscall invocation.
type Call struct {
	Op Op
	FD int
}

type recvStep struct {
	data []byte
	err  error
}

type sendStep struct {
	n   int
	err error
}

type pollStep struct {
	idx int
	rev api.Events
	n   int
	err error
}

// Sys is a scripted implementation of api.Sys.
//
// Defaults when a queue is empty: Recv reports EAGAIN (a non-blocking
// socket with nothing to deliver), Send accepts everything, Sendmsg
// accepts the whole datagram, Poll reports the requested readiness, and
// SockErr reports no pending error.
type Sys struct {
	mu sync.Mutex

	calls []Call

	recvs    []recvStep
	sends    []sendStep
	sendmsgs []sendStep
	polls    []pollStep
	sockErrs []int

	sent      []byte
	datagrams [][][]byte
	shutdowns []api.How
	closed    []int

	shutdownErr error
	closeErr    error
}

// NewSys creates a fake with default behavior on every operation.
func NewSys() *Sys {
	return &Sys{}
}

// QueueRecv scripts one successful receive delivering data. Oversized
// data is split across receives automatically.
func (s *Sys) QueueRecv(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.recvs = append(s.recvs, recvStep{data: cp})
}

// QueueRecvErr scripts one failing receive.
func (s *Sys) QueueRecvErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recvs = append(s.recvs, recvStep{err: err})
}

// QueueRecvClosed scripts one zero-byte receive: an orderly peer close.
func (s *Sys) QueueRecvClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recvs = append(s.recvs, recvStep{})
}

// QueueSend scripts one send result. With err nil, up to n bytes are
// accepted and captured.
func (s *Sys) QueueSend(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, sendStep{n: n, err: err})
}

// QueueSendmsg scripts one datagram send result. A zero n with a nil err
// is the "neither success nor definitive error" case.
func (s *Sys) QueueSendmsg(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendmsgs = append(s.sendmsgs, sendStep{n: n, err: err})
}

// QueuePoll scripts one poll result with rev reported on the first slot.
func (s *Sys) QueuePoll(rev api.Events, n int, err error) {
	s.QueuePollAt(0, rev, n, err)
}

// QueuePollAt scripts one poll result with rev reported on slot idx.
func (s *Sys) QueuePollAt(idx int, rev api.Events, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls = append(s.polls, pollStep{idx: idx, rev: rev, n: n, err: err})
}

// QueueSockErr scripts one pending-socket-error code.
func (s *Sys) QueueSockErr(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockErrs = append(s.sockErrs, code)
}

// SetShutdownErr makes every Shutdown call fail with err.
func (s *Sys) SetShutdownErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownErr = err
}

// SetCloseErr makes every Close call fail with err.
func (s *Sys) SetCloseErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeErr = err
}

// Calls returns the recorded invocations in order.
func (s *Sys) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times op was invoked.
func (s *Sys) CallCount(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Sent returns every byte accepted by Send, concatenated in order.
func (s *Sys) Sent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.sent))
	copy(out, s.sent)
	return out
}

// Datagrams returns the part vectors accepted by Sendmsg.
func (s *Sys) Datagrams() [][][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][][]byte, len(s.datagrams))
	copy(out, s.datagrams)
	return out
}

// Shutdowns returns the recorded shutdown directions.
func (s *Sys) Shutdowns() []api.How {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.How, len(s.shutdowns))
	copy(out, s.shutdowns)
	return out
}

// ClosedFDs returns the descriptors passed to Close.
func (s *Sys) ClosedFDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.closed))
	copy(out, s.closed)
	return out
}

// Recv implements api.Sys.
func (s *Sys) Recv(fd int, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpRecv, FD: fd})

	if len(s.recvs) == 0 {
		return 0, syscall.EAGAIN
	}
	step := s.recvs[0]
	s.recvs = s.recvs[1:]
	if step.err != nil {
		return 0, step.err
	}
	n := copy(p, step.data)
	if n < len(step.data) {
		rest := recvStep{data: step.data[n:]}
		s.recvs = append([]recvStep{rest}, s.recvs...)
	}
	return n, nil
}

// Send implements api.Sys.
func (s *Sys) Send(fd int, p []byte, more bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpSend, FD: fd})

	if len(s.sends) == 0 {
		s.sent = append(s.sent, p...)
		return len(p), nil
	}
	step := s.sends[0]
	s.sends = s.sends[1:]
	if step.err != nil {
		return step.n, step.err
	}
	n := min(step.n, len(p))
	s.sent = append(s.sent, p[:n]...)
	return n, nil
}

// Sendmsg implements api.Sys.
func (s *Sys) Sendmsg(fd int, parts [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpSendmsg, FD: fd})

	total := 0
	for _, p := range parts {
		total += len(p)
	}

	if len(s.sendmsgs) > 0 {
		step := s.sendmsgs[0]
		s.sendmsgs = s.sendmsgs[1:]
		if step.err != nil {
			return 0, step.err
		}
		if step.n == 0 {
			return 0, nil
		}
		s.captureDatagram(parts)
		return step.n, nil
	}

	s.captureDatagram(parts)
	return total, nil
}

func (s *Sys) captureDatagram(parts [][]byte) {
	dg := make([][]byte, len(parts))
	for i, p := range parts {
		cp := make([]byte, len(p))
		copy(cp, p)
		dg[i] = cp
	}
	s.datagrams = append(s.datagrams, dg)
}

// Poll implements api.Sys.
func (s *Sys) Poll(fds []api.PollFD, timeout time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpPoll, FD: fds[0].FD})

	if len(s.polls) == 0 {
		for i := range fds {
			fds[i].REvents = fds[i].Events
		}
		return len(fds), nil
	}
	step := s.polls[0]
	s.polls = s.polls[1:]
	if step.err != nil {
		return 0, step.err
	}
	if step.idx < len(fds) {
		fds[step.idx].REvents = step.rev
	}
	return step.n, nil
}

// SockErr implements api.Sys.
func (s *Sys) SockErr(fd int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpSockErr, FD: fd})

	if len(s.sockErrs) == 0 {
		return 0, nil
	}
	code := s.sockErrs[0]
	s.sockErrs = s.sockErrs[1:]
	return code, nil
}

// Shutdown implements api.Sys.
func (s *Sys) Shutdown(fd int, how api.How) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpShutdown, FD: fd})
	s.shutdowns = append(s.shutdowns, how)
	return s.shutdownErr
}

// Close implements api.Sys.
func (s *Sys) Close(fd int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: OpClose, FD: fd})
	s.closed = append(s.closed, fd)
	return s.closeErr
}
