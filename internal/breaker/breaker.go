// Package breaker provides a small circuit breaker guarding calls into the
// persistence layer. It is an explicit value object (state, last failure
// time, cool-down) injected into callers rather than hidden mutable
// attributes on a client.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State represents the breaker state
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// ErrOpen is returned when the breaker refuses a call.
var ErrOpen = errors.New("circuit breaker open")

// Breaker trips open after a run of consecutive failures and lets a single
// probe through once the cool-down has elapsed.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	coolDown         time.Duration

	state       State
	failures    int
	lastFailure time.Time
}

// New creates a closed Breaker. A failureThreshold <= 0 defaults to 3 and a
// non-positive coolDown to 30 seconds.
func New(failureThreshold int, coolDown time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	if coolDown <= 0 {
		coolDown = 30 * time.Second
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		coolDown:         coolDown,
		state:            StateClosed,
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed at the given time. While open,
// the first call after the cool-down is allowed as a probe.
func (b *Breaker) Allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		return true
	}
	if now.Sub(b.lastFailure) >= b.coolDown {
		// Probe: stay open until the probe reports success, but push the
		// window forward so concurrent callers don't all probe at once.
		b.lastFailure = now
		return true
	}
	return false
}

// MarkSuccess records a successful call and closes the circuit.
func (b *Breaker) MarkSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = StateClosed
}

// MarkFailure records a failed call at the given time, opening the circuit
// once the consecutive-failure threshold is reached.
func (b *Breaker) MarkFailure(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = now
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
	}
}

// Do runs fn under the breaker. While open it fails fast with ErrOpen;
// otherwise fn's outcome is recorded. Context errors count as failures,
// matching the fail-closed contract for bounded persistence calls.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	now := time.Now()
	if !b.Allow(now) {
		return ErrOpen
	}
	if err := fn(ctx); err != nil {
		b.MarkFailure(time.Now())
		return err
	}
	b.MarkSuccess()
	return nil
}
