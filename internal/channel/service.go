// Package channel manages channels and the single playout each one owns.
package channel

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/models"
)

// ChannelService handles business logic for channel operations
type ChannelService struct {
	repos           *db.Repositories
	defaultTimezone string
}

// NewChannelService creates a new channel service instance. Channels created
// without a timezone use defaultTimezone.
func NewChannelService(repos *db.Repositories, defaultTimezone string) *ChannelService {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &ChannelService{
		repos:           repos,
		defaultTimezone: defaultTimezone,
	}
}

// CreateChannel creates a channel together with its playout. The playout gets
// a random seed which stays fixed for its lifetime.
func (s *ChannelService) CreateChannel(ctx context.Context, number, name, timezone string) (*models.Channel, *models.Playout, error) {
	if timezone == "" {
		timezone = s.defaultTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		logger.Log.Warn().
			Str("timezone", timezone).
			Msg("Channel creation failed: invalid timezone")
		return nil, nil, fmt.Errorf("failed to create channel: %w", ErrInvalidTimezone)
	}

	channel := models.NewChannel(number, name, timezone)
	playout := &models.Playout{
		ScheduleKind: models.ScheduleKindClassic,
		Seed:         rand.Int64N(1 << 31),
	}

	if err := s.repos.Channels.CreateWithPlayout(ctx, channel, playout); err != nil {
		logger.Log.Error().
			Err(err).
			Str("name", name).
			Msg("Failed to create channel in database")
		return nil, nil, fmt.Errorf("failed to create channel: %w", err)
	}

	logger.Log.Info().
		Uint("channel_id", channel.ID).
		Uint("playout_id", playout.ID).
		Str("name", channel.Name).
		Msg("Channel created successfully")

	return channel, playout, nil
}

// GetByID retrieves a channel by its ID
func (s *ChannelService) GetByID(ctx context.Context, id uint) (*models.Channel, error) {
	channel, err := s.repos.Channels.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrChannelNotFound
		}
		logger.Log.Error().
			Err(err).
			Uint("channel_id", id).
			Msg("Failed to get channel by ID")
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return channel, nil
}

// List retrieves all channels
func (s *ChannelService) List(ctx context.Context) ([]*models.Channel, error) {
	channels, err := s.repos.Channels.List(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list channels")
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	logger.Log.Debug().
		Int("count", len(channels)).
		Msg("Listed channels")

	return channels, nil
}

// Playout retrieves the playout owned by a channel
func (s *ChannelService) Playout(ctx context.Context, channelID uint) (*models.Playout, error) {
	p, err := s.repos.Playouts.GetByChannelID(ctx, channelID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get playout: %w", err)
	}
	return p, nil
}

// AssignSchedule points the channel's playout at a program schedule and
// switches it to classic scheduling. The existing timeline is kept; a reset
// build regenerates it under the new schedule.
func (s *ChannelService) AssignSchedule(ctx context.Context, channelID, scheduleID uint) (*models.Playout, error) {
	p, err := s.Playout(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.Schedules.GetWithItems(ctx, scheduleID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	p.ProgramScheduleID = &scheduleID
	p.ScheduleKind = models.ScheduleKindClassic
	if err := s.repos.Playouts.Update(ctx, p); err != nil {
		logger.Log.Error().
			Err(err).
			Uint("channel_id", channelID).
			Uint("schedule_id", scheduleID).
			Msg("Failed to assign schedule")
		return nil, fmt.Errorf("failed to assign schedule: %w", err)
	}

	logger.Log.Info().
		Uint("channel_id", channelID).
		Uint("playout_id", p.ID).
		Uint("schedule_id", scheduleID).
		Msg("Schedule assigned")

	return p, nil
}

// DeleteChannel removes a channel, its playout and the generated timeline
func (s *ChannelService) DeleteChannel(ctx context.Context, id uint) error {
	if err := s.repos.Channels.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return ErrChannelNotFound
		}
		logger.Log.Error().
			Err(err).
			Uint("channel_id", id).
			Msg("Failed to delete channel")
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	logger.Log.Info().
		Uint("channel_id", id).
		Msg("Channel deleted successfully")

	return nil
}
