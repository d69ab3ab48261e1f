package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrOpenState is returned by Execute while the breaker rejects calls.
	ErrOpenState = gobreaker.ErrOpenState
	// ErrTooManyRequests is returned while a half-open breaker already has a probe in flight.
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// New returns a breaker that opens after maxFailures consecutive failures
// and lets a probe through after openTimeout.
func New(name string, maxFailures uint32, openTimeout time.Duration) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			config.GetLogger().Warnw("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &Breaker{
		cb: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// isSuccessful keeps cancelled or expired caller contexts out of the failure count.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// NewFromConfig builds a breaker with the circuit_breaker settings.
func NewFromConfig(name string) *Breaker {
	maxFailures, openTimeout := config.GetCircuitBreakerConfig()
	return New(name, maxFailures, openTimeout)
}

func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

func (b *Breaker) State() string {
	return b.cb.State().String()
}
