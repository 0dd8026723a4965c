package marketdata

import (
	"fmt"
	"sync"
	"time"
)

// BreakerState represents the feed circuit breaker state.
type BreakerState int

const (
	BreakerClosed   BreakerState = 0 // Normal operation — fetches pass through
	BreakerOpen     BreakerState = 1 // Feed tripped — fetches rejected immediately
	BreakerHalfOpen BreakerState = 2 // Testing — one fetch allowed through to probe
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrFeedUnavailable is returned when the breaker is open. The provider
// treats it like any other remote failure and falls through to the
// stored or sample layers without waiting on the network.
var ErrFeedUnavailable = fmt.Errorf("market data feed circuit open")

// Breaker guards the remote chart feed. After maxFailures consecutive
// failures it opens and rejects fetches for resetTimeout, then allows a
// single probe through. A successful probe closes it; a failed probe
// reopens it.
type Breaker struct {
	mu           sync.Mutex
	state        BreakerState
	failures     int
	maxFailures  int
	resetTimeout time.Duration
	lastFailure  time.Time

	// Optional — called on state transitions.
	OnStateChange func(from, to BreakerState)
}

// NewBreaker creates a feed breaker.
func NewBreaker(maxFailures int, resetTimeout time.Duration) *Breaker {
	return &Breaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        BreakerClosed,
	}
}

// Execute runs fetch through the breaker. Returns ErrFeedUnavailable if
// the breaker is open and the reset timeout has not elapsed.
func (b *Breaker) Execute(fetch func() error) error {
	b.mu.Lock()

	switch b.state {
	case BreakerOpen:
		if time.Since(b.lastFailure) > b.resetTimeout {
			b.transition(BreakerHalfOpen)
		} else {
			b.mu.Unlock()
			return ErrFeedUnavailable
		}

	case BreakerHalfOpen:
		// the mutex serializes probes; let this one through
	}

	b.mu.Unlock()

	err := fetch()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		b.lastFailure = time.Now()

		if b.state == BreakerHalfOpen {
			b.transition(BreakerOpen)
		} else if b.failures >= b.maxFailures {
			b.transition(BreakerOpen)
		}
		return err
	}

	if b.state == BreakerHalfOpen {
		b.transition(BreakerClosed)
	}
	b.failures = 0
	return nil
}

// CurrentState returns the breaker state.
func (b *Breaker) CurrentState() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) transition(to BreakerState) {
	from := b.state
	b.state = to
	if to == BreakerClosed {
		b.failures = 0
	}
	if b.OnStateChange != nil {
		b.OnStateChange(from, to)
	}
}
