package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/playout/internal/channel"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/logger"
)

// lookahead bounds the rows loaded to find the item after the one on air
const lookahead = 24 * time.Hour

// TimelineService reads the generated timeline of channels
//
//nolint:revive // Service name matches established patterns in codebase
type TimelineService struct {
	repos *db.Repositories
	now   func() time.Time
}

// NewTimelineService creates a new timeline service instance
func NewTimelineService(repos *db.Repositories) *TimelineService {
	return &TimelineService{
		repos: repos,
		now:   time.Now,
	}
}

// GetCurrentPosition returns what the channel is playing right now.
//
// Returns channel.ErrChannelNotFound, ErrNotGenerated, ErrOffAir or wrapped
// database errors.
func (s *TimelineService) GetCurrentPosition(ctx context.Context, channelID uint) (*TimelinePosition, error) {
	return s.PositionAt(ctx, channelID, s.now().UTC())
}

// PositionAt returns what the channel plays at t
func (s *TimelineService) PositionAt(ctx context.Context, channelID uint, t time.Time) (*TimelinePosition, error) {
	p, err := s.repos.Playouts.GetByChannelID(ctx, channelID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, channel.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get playout: %w", err)
	}

	items, err := s.repos.Playouts.Items(ctx, p.ID, t, t.Add(lookahead))
	if err != nil {
		return nil, err
	}

	position, err := CalculatePosition(items, t)
	if err != nil {
		logger.Log.Debug().
			Err(err).
			Uint("channel_id", channelID).
			Time("at", t).
			Msg("No item on air")
		return nil, err
	}

	if m, err := s.repos.Media.GetByID(ctx, position.MediaItemID); err == nil {
		position.MediaTitle = m.Title
	}
	if position.Next != nil {
		if m, err := s.repos.Media.GetByID(ctx, position.Next.MediaItemID); err == nil {
			position.Next.MediaTitle = m.Title
		}
	}

	logger.Log.Debug().
		Uint("channel_id", channelID).
		Uint("media_item_id", position.MediaItemID).
		Int64("offset_seconds", position.OffsetSeconds).
		Msg("Timeline position resolved")

	return position, nil
}
