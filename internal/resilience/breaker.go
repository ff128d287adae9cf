// Package resilience guards calls to flaky remote services with a circuit
// breaker.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/edgard/shamstagram/internal/logger"
)

// ErrOpen is returned without calling the operation while the breaker is
// open or its half-open probe budget is used up.
var ErrOpen = errors.New("circuit breaker open")

// BreakerConfig sets when a breaker trips and how long it stays open.
type BreakerConfig struct {
	Name string
	// MaxFailures is the number of consecutive failures that opens the
	// breaker.
	MaxFailures int
	// Cooldown is how long the breaker stays open before one probe call
	// is let through.
	Cooldown time.Duration
	// OnStateChange is called after every transition. Optional.
	OnStateChange func(name string, from, to string)
}

// Breaker wraps gobreaker with context-aware execution.
type Breaker struct {
	cb  *gobreaker.CircuitBreaker
	log *slog.Logger
}

// NewBreaker builds a breaker. Zero values select 5 failures and a one
// minute cooldown.
func NewBreaker(cfg BreakerConfig, log *slog.Logger) *Breaker {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}

	b := &Breaker{log: log.With("component", "breaker", "name", cfg.Name)}

	maxFailures := uint32(cfg.MaxFailures)
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A cancelled caller says nothing about the remote side.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from.String(), to.String())
			}
		},
	})

	return b
}

// State returns "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Execute runs op unless the breaker is open. Rejections wrap ErrOpen.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) (string, error)) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", errors.Join(ErrOpen, err)
	}
	if err != nil {
		return "", err
	}

	s, _ := out.(string)
	return s, nil
}
