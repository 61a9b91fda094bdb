// Package scheduler keeps every playout generated up to a rolling horizon.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stwalsh4118/playout/internal/config"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/models"
	"github.com/stwalsh4118/playout/internal/playout"
	"golang.org/x/sync/errgroup"
)

// Builder runs a single playout build
type Builder interface {
	Build(ctx context.Context, playoutID uint, opts playout.BuildOptions) (*playout.Result, error)
}

// Lister enumerates the playouts to keep extended
type Lister interface {
	List(ctx context.Context) ([]models.Playout, error)
}

// Summary counts the outcomes of one extension pass
type Summary struct {
	Built   int
	Skipped int
	Failed  int
}

// Scheduler periodically extends every playout to now + horizon
type Scheduler struct {
	builder     Builder
	playouts    Lister
	horizon     time.Duration
	interval    time.Duration
	timeout     time.Duration
	maxParallel int
	now         func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	stopped bool
}

// New creates a scheduler from the build configuration
func New(builder Builder, playouts Lister, cfg config.BuildConfig) *Scheduler {
	return &Scheduler{
		builder:     builder,
		playouts:    playouts,
		horizon:     cfg.Horizon,
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxParallel: max(cfg.MaxParallel, 1),
		now:         time.Now,
		done:        make(chan struct{}),
	}
}

// Start runs an extension pass immediately and then every interval until Stop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errors.New("scheduler has been stopped")
	}
	if s.started {
		return errors.New("scheduler already started")
	}
	s.started = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.loop(ctx)

	logger.Log.Info().
		Dur("interval", s.interval).
		Dur("horizon", s.horizon).
		Int("max_parallel", s.maxParallel).
		Msg("Build scheduler started")
	return nil
}

// Stop cancels running builds and waits for the loop to exit
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped || !s.started {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.cancel()
	s.mu.Unlock()

	<-s.done
	logger.Log.Info().Msg("Build scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Error().Err(err).Msg("Horizon extension pass failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce extends every playout to now + horizon, running up to maxParallel
// builds at a time. Individual build failures are counted, not returned.
func (s *Scheduler) RunOnce(ctx context.Context) (Summary, error) {
	playouts, err := s.playouts.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list playouts: %w", err)
	}

	until := s.now().Add(s.horizon)
	var built, skipped, failed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for _, p := range playouts {
		g.Go(func() error {
			bctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			_, err := s.builder.Build(bctx, p.ID, playout.BuildOptions{Until: until})
			switch {
			case err == nil:
				built.Add(1)
			case playout.IsBuildInProgress(err), playout.IsNoSchedule(err):
				skipped.Add(1)
				logger.Log.Debug().
					Err(err).
					Uint("playout_id", p.ID).
					Msg("Skipped playout extension")
			default:
				failed.Add(1)
				logger.Log.Warn().
					Err(err).
					Uint("playout_id", p.ID).
					Msg("Playout extension failed")
			}
			return nil
		})
	}
	_ = g.Wait() // nolint:errcheck // workers never return errors

	summary := Summary{Built: int(built.Load()), Skipped: int(skipped.Load()), Failed: int(failed.Load())}
	logger.Log.Info().
		Int("playouts", len(playouts)).
		Int("built", summary.Built).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Time("until", until).
		Msg("Horizon extension pass complete")
	return summary, ctx.Err()
}
