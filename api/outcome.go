// File: api/outcome.go
//
// Pure classification of syscall errors into retry-vs-fatal outcomes.
// Keeping this a function over the error value lets the whole retry logic
// run against a scripted fake transport.

package api

import (
	"errors"
	"syscall"
)

// Outcome is the disposition of a failed socket call.
type Outcome int

const (
	// OutcomeFatal closes the connection and surfaces the errno.
	OutcomeFatal Outcome = iota
	// OutcomeRetry re-issues the call immediately (interrupted by signal).
	OutcomeRetry
	// OutcomeWouldBlock waits for readiness before retrying.
	OutcomeWouldBlock
	// OutcomeNoBufs retries the send without waiting; the kernel ran out
	// of transient buffer space.
	OutcomeNoBufs
	// OutcomeTooLarge is a datagram that will never fit. Never retried.
	OutcomeTooLarge
	// OutcomeResource is kernel resource exhaustion reported by poll.
	OutcomeResource
)

// ClassifyIO maps an error from Recv/Send/Sendmsg to its outcome.
func ClassifyIO(err error) Outcome {
	errno, ok := errnoOf(err)
	if !ok {
		return OutcomeFatal
	}
	switch {
	case errno == syscall.EINTR || isRestart(errno):
		return OutcomeRetry
	case errno == syscall.EAGAIN || errno == syscall.EWOULDBLOCK || errno == syscall.ETIMEDOUT:
		// ETIMEDOUT shows up on some platforms for a non-blocking recv
		// that simply has nothing to deliver yet.
		return OutcomeWouldBlock
	case errno == syscall.ENOBUFS:
		return OutcomeNoBufs
	case errno == syscall.EMSGSIZE:
		return OutcomeTooLarge
	}
	return OutcomeFatal
}

// ClassifyPoll maps an error from Poll to its outcome. Poll reports
// EFAULT/ENOMEM/EINVAL for descriptor-table or memory exhaustion, which
// the caller surfaces as a memory allocation failure.
func ClassifyPoll(err error) Outcome {
	errno, ok := errnoOf(err)
	if !ok {
		return OutcomeFatal
	}
	switch {
	case errno == syscall.EINTR || isRestart(errno):
		return OutcomeRetry
	case errno == syscall.EFAULT || errno == syscall.ENOMEM || errno == syscall.EINVAL:
		return OutcomeResource
	}
	return OutcomeFatal
}

func errnoOf(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}
