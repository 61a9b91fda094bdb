package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/metrics"
	"github.com/stwalsh4118/playout/internal/models"
)

const breakerName = "library"

// BreakerConfig configures the circuit breaker around library lookups
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold int
	// ResetTimeout is how long the breaker stays open before probing again
	ResetTimeout time.Duration
}

// Guarded wraps a Provider with a circuit breaker so a failing library fails
// builds fast instead of stalling every one of them
type Guarded struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[[]models.MediaItem]
}

var _ Provider = (*Guarded)(nil)

// NewGuarded wraps next with a circuit breaker
func NewGuarded(next Provider, cfg BreakerConfig) *Guarded {
	threshold := uint32(max(cfg.FailureThreshold, 1))

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.MediaItem](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Library circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Guarded{next: next, cb: cb}
}

// State reports the current breaker state
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

// MediaItems implements Provider
func (g *Guarded) MediaItems(ctx context.Context, ids []uint) ([]models.MediaItem, error) {
	return g.execute(func() ([]models.MediaItem, error) {
		return g.next.MediaItems(ctx, ids)
	})
}

// AllMediaItems implements Provider
func (g *Guarded) AllMediaItems(ctx context.Context) ([]models.MediaItem, error) {
	return g.execute(func() ([]models.MediaItem, error) {
		return g.next.AllMediaItems(ctx)
	})
}

func (g *Guarded) execute(fn func() ([]models.MediaItem, error)) ([]models.MediaItem, error) {
	items, err := g.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		return items, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, err
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
