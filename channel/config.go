// File: channel/config.go
//
// Named limits for the core. Retry bounds travel through Config rather
// than being scattered through control flow.

package channel

import (
	"log"
	"time"

	"github.com/kungyadami/libmemcached-konduck/api"
)

const (
	// MaxBuffer is the fixed capacity of each connection's read and
	// write buffer.
	MaxBuffer = 8192

	// CommandScratchSize bounds the scratch buffer handed to response
	// consumers while draining buffered input.
	CommandScratchSize = 350
)

const (
	// DefaultPollTimeout bounds every readiness wait. A zero timeout is
	// honored as an immediate timeout, not an infinite wait.
	DefaultPollTimeout = time.Second

	// DefaultMaxPollRetries bounds readiness wait attempts on signal
	// interruption or a spurious error indication.
	DefaultMaxPollRetries = 5

	// DefaultMaxDatagramAttempts bounds UDP sends that report neither
	// success nor a definitive error.
	DefaultMaxDatagramAttempts = 5

	// DefaultMaxPollCandidates caps how many descriptors one readable-
	// connection selection will poll.
	DefaultMaxPollCandidates = 100
)

// Config carries the tunable limits and the optional observability hooks.
type Config struct {
	PollTimeout         time.Duration
	MaxPollRetries      int
	MaxDatagramAttempts int
	MaxPollCandidates   int

	// Logger, when set, receives a line per fatal condition.
	Logger *log.Logger

	// ErrorSink, when set, receives every structured error the core
	// records, before it is returned to the caller.
	ErrorSink func(*api.Error)
}

// DefaultConfig returns the stock limits with no hooks installed.
func DefaultConfig() Config {
	return Config{
		PollTimeout:         DefaultPollTimeout,
		MaxPollRetries:      DefaultMaxPollRetries,
		MaxDatagramAttempts: DefaultMaxDatagramAttempts,
		MaxPollCandidates:   DefaultMaxPollCandidates,
	}
}
