// Package breaker builds the circuit breakers shared by the outbound clients.
// A breaker only fails fast while an upstream is down; nothing here retries.
package breaker

import (
	"time"

	"github.com/sony/gobreaker"
)

// Settings are the tuning knobs exposed through config.
// Zero values fall back to the defaults below.
type Settings struct {
	// Interval is the cyclic period in the closed state after which failure
	// counts are cleared.
	Interval time.Duration
	// Timeout is how long the breaker stays open before a half-open probe.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens it.
	FailureThreshold uint32
}

// StateListener is notified on every state transition.
type StateListener func(name string, from, to gobreaker.State)

// New returns a breaker named name. onChange may be nil.
func New(name string, s Settings, onChange StateListener) *gobreaker.CircuitBreaker {
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	threshold := s.FailureThreshold

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		OnStateChange: onChange,
	})
}
