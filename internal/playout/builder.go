// Package playout generates the concrete timeline of a channel from its
// program schedule or templates. A build resumes from the persisted anchor
// and cursors, extends the timeline to a horizon and commits every mutation
// atomically.
package playout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stwalsh4118/playout/internal/buildlock"
	"github.com/stwalsh4118/playout/internal/collection"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/deco"
	"github.com/stwalsh4118/playout/internal/library"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/metrics"
	"github.com/stwalsh4118/playout/internal/models"
)

// Locker serialises builds per playout
type Locker interface {
	TryLock(playoutID uint) (func(), error)
}

// Service runs playout builds
type Service struct {
	repos    *db.Repositories
	resolver *collection.Resolver
	locks    Locker
	now      func() time.Time
}

// NewService creates a build service. lib is consulted for media lookups
// while resolving content sources.
func NewService(repos *db.Repositories, lib library.Provider, locks Locker) *Service {
	return &Service{
		repos:    repos,
		resolver: collection.NewResolver(repos.Collections, lib),
		locks:    locks,
		now:      time.Now,
	}
}

// BuildOptions controls one build pass
type BuildOptions struct {
	// Until is the horizon; generation stops once the timeline reaches it
	Until time.Time
	// Reset discards the timeline from From onwards and regenerates it
	Reset bool
	// From is the start of a reset or of the very first build; zero means now
	From time.Time
}

// Result summarises a committed build pass
type Result struct {
	BuildID   string    `json:"build_id"`
	PlayoutID uint      `json:"playout_id"`
	Items     int       `json:"items"`
	Gaps      int       `json:"gaps"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
}

// Build extends the playout's timeline to opts.Until. Only one build per
// playout runs at a time; a concurrent request fails with ErrBuildInProgress.
// On any error nothing is committed except the failed build status.
func (s *Service) Build(ctx context.Context, playoutID uint, opts BuildOptions) (*Result, error) {
	unlock, err := s.locks.TryLock(playoutID)
	if err != nil {
		if buildlock.IsLocked(err) {
			metrics.BuildsTotal.WithLabelValues(metrics.ResultSkipped).Inc()
			return nil, fmt.Errorf("%w: playout %d", ErrBuildInProgress, playoutID)
		}
		return nil, fmt.Errorf("failed to lock playout %d: %w", playoutID, err)
	}
	defer unlock()

	buildID := uuid.NewString()
	log := logger.ForBuild(playoutID, buildID)

	metrics.BuildsInProgress.Inc()
	defer metrics.BuildsInProgress.Dec()
	started := time.Now()

	log.Info().
		Time("until", opts.Until).
		Bool("reset", opts.Reset).
		Msg("Starting playout build")

	result, err := s.build(ctx, log, buildID, playoutID, opts)
	metrics.BuildDuration.Observe(time.Since(started).Seconds())

	if IsPlayoutNotFound(err) {
		metrics.BuildsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, err
	}
	s.recordStatus(ctx, playoutID, err)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			metrics.BuildsTotal.WithLabelValues(metrics.ResultCanceled).Inc()
			log.Warn().Err(err).Msg("Playout build canceled")
		} else {
			metrics.BuildsTotal.WithLabelValues(metrics.ResultFailure).Inc()
			log.Error().Err(err).Msg("Playout build failed")
		}
		return nil, err
	}

	metrics.BuildsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Info().
		Int("items", result.Items).
		Int("gaps", result.Gaps).
		Time("from", result.From).
		Time("to", result.To).
		Dur("elapsed", time.Since(started)).
		Msg("Playout build committed")
	return result, nil
}

func (s *Service) build(ctx context.Context, log zerolog.Logger, buildID string, playoutID uint, opts BuildOptions) (*Result, error) {
	playout, err := s.repos.Playouts.Get(ctx, playoutID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %d", ErrPlayoutNotFound, playoutID)
		}
		return nil, fmt.Errorf("failed to load playout: %w", err)
	}
	channel, err := s.repos.Channels.GetByID(ctx, playout.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel: %w", err)
	}
	state, err := s.repos.Playouts.LoadBuildState(ctx, playoutID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start, resetFrom, err := s.startOf(ctx, playoutID, state, opts, now)
	if err != nil {
		return nil, err
	}

	decos, err := deco.Load(ctx, s.repos.Decos, channel, playout, state.Templates)
	if err != nil {
		return nil, err
	}
	b := newBuildContext(ctx, log, s.repos, s.resolver, playout, channel, state, decos, now)

	var end time.Time
	switch playout.ScheduleKind {
	case models.ScheduleKindTemplate:
		if len(state.Templates) == 0 {
			return nil, fmt.Errorf("%w: no templates bound", ErrNoSchedule)
		}
		end, err = newTemplated(b, state.Templates).run(start, opts.Until)
	default:
		var c *classic
		if c, err = s.classicFor(ctx, b, playout, opts.Reset); err != nil {
			return nil, err
		}
		end, err = c.run(start, opts.Until)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.repos.Playouts.CommitBuild(ctx, b.commit(resetFrom)); err != nil {
		return nil, err
	}

	for _, item := range b.items {
		metrics.ItemsGenerated.WithLabelValues(string(item.FillerKind)).Inc()
	}
	metrics.GapsRecorded.Add(float64(len(b.gaps)))
	metrics.HorizonSeconds.WithLabelValues(strconv.FormatUint(uint64(playoutID), 10)).Set(end.Sub(now).Seconds())

	return &Result{
		BuildID:   buildID,
		PlayoutID: playoutID,
		Items:     len(b.items),
		Gaps:      len(b.gaps),
		From:      start.UTC(),
		To:        end.UTC(),
	}, nil
}

// startOf returns where generation resumes. A reset moves the start past any
// item already playing at From and clears the anchor while keeping the guide
// group counter monotonic.
func (s *Service) startOf(ctx context.Context, playoutID uint, state *db.BuildState, opts BuildOptions, now time.Time) (time.Time, *time.Time, error) {
	from := opts.From
	if from.IsZero() {
		from = now.Truncate(time.Minute)
	}

	if !opts.Reset {
		if state.Anchor.NextStart != nil {
			return *state.Anchor.NextStart, nil, nil
		}
		return from, nil, nil
	}

	item, err := s.repos.Playouts.ItemAt(ctx, playoutID, from)
	switch {
	case err == nil && item.Start.Before(from):
		from = item.Finish
	case err != nil && !db.IsNotFound(err):
		return time.Time{}, nil, fmt.Errorf("failed to find item playing at reset point: %w", err)
	}

	state.Anchor = models.PlayoutAnchor{
		ID:             state.Anchor.ID,
		PlayoutID:      playoutID,
		NextGuideGroup: max(state.Anchor.NextGuideGroup, 1),
	}
	return from, &from, nil
}

func (s *Service) classicFor(ctx context.Context, b *buildContext, playout *models.Playout, reset bool) (*classic, error) {
	if playout.ProgramScheduleID == nil {
		return nil, fmt.Errorf("%w: no program schedule", ErrNoSchedule)
	}
	schedule, err := s.repos.Schedules.GetWithItems(ctx, *playout.ProgramScheduleID)
	if db.IsNotFound(err) {
		return nil, fmt.Errorf("%w: program schedule %d not found", ErrNoSchedule, *playout.ProgramScheduleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load program schedule: %w", err)
	}
	if len(schedule.Items) == 0 {
		return nil, fmt.Errorf("%w: program schedule %d is empty", ErrNoSchedule, schedule.ID)
	}

	var lastStart time.Time
	if !reset {
		h, err := s.repos.Playouts.LatestActivation(ctx, playout.ID)
		switch {
		case err == nil:
			lastStart = h.When
		case !db.IsNotFound(err):
			return nil, fmt.Errorf("failed to load latest activation: %w", err)
		}
	}
	return newClassic(b, schedule, lastStart), nil
}
