// File: api/sys.go
//
// Platform syscall surface consumed by the buffered channel. The real
// implementation lives in the sys package; tests inject a scripted fake.

package api

import "time"

// InvalidFD is the sentinel for a connection without a live socket.
const InvalidFD = -1

// Events is the readiness interest/result bitmask for Poll.
type Events int16

const (
	// EventIn signals readable data.
	EventIn Events = 1 << iota
	// EventOut signals writability.
	EventOut
	// EventErr signals an error condition on the descriptor.
	EventErr
	// EventHup signals peer hang-up.
	EventHup
)

// PollFD is one descriptor slot in a readiness poll.
type PollFD struct {
	FD      int
	Events  Events
	REvents Events
}

// How selects the direction of a socket shutdown.
type How int

const (
	ShutRead How = iota
	ShutWrite
	ShutReadWrite
)

// Sys abstracts the non-blocking socket calls the core issues. All
// methods operate on already-connected descriptors supplied by the
// resolver collaborator; Sys never creates or connects sockets.
type Sys interface {
	// Recv performs one non-blocking receive into p.
	Recv(fd int, p []byte) (int, error)

	// Send transmits p. When more is true the kernel is hinted that
	// further data follows and small writes may be coalesced.
	Send(fd int, p []byte, more bool) (int, error)

	// Sendmsg transmits all parts as a single datagram.
	Sendmsg(fd int, parts [][]byte) (int, error)

	// Poll waits for readiness on fds up to timeout, filling REvents.
	// It returns the number of descriptors with events.
	Poll(fds []PollFD, timeout time.Duration) (int, error)

	// SockErr fetches and clears the pending socket error code.
	SockErr(fd int) (int, error)

	// Shutdown half- or full-closes the descriptor.
	Shutdown(fd int, how How) error

	// Close releases the descriptor.
	Close(fd int) error
}
