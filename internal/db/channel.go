package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/playout/internal/models"
	"gorm.io/gorm"
)

// ChannelRepository handles database operations for channels and their watermarks
type ChannelRepository struct {
	db *DB
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Create inserts a new channel, disambiguating its name
func (r *ChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	return r.db.createNamed(ctx, "channels", &channel.Name, channel)
}

// CreateWithPlayout inserts a channel together with its playout and the
// playout's anchor in one transaction
func (r *ChannelRepository) CreateWithPlayout(ctx context.Context, channel *models.Channel, playout *models.Playout) error {
	err := r.db.withNamed(ctx, &channel.Name, func(tx *gorm.DB) error {
		channel.ID, playout.ID = 0, 0
		if err := insertNamed(ctx, tx, "channels", &channel.Name, channel); err != nil {
			return err
		}
		playout.ChannelID = channel.ID
		if err := Validate(playout); err != nil {
			return err
		}
		if err := tx.Create(playout).Error; err != nil {
			return MapGormError(err)
		}
		anchor := models.PlayoutAnchor{PlayoutID: playout.ID, NextGuideGroup: 1}
		if err := tx.Create(&anchor).Error; err != nil {
			return MapGormError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

// GetByID retrieves a channel by its id
func (r *ChannelRepository) GetByID(ctx context.Context, id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.first(ctx, &channel, id); err != nil {
		return nil, err
	}
	return &channel, nil
}

// GetByUniqueID retrieves a channel by its external UUID
func (r *ChannelRepository) GetByUniqueID(ctx context.Context, uid uuid.UUID) (*models.Channel, error) {
	var channel models.Channel
	result := r.db.WithContext(ctx).Where("unique_id = ?", uid.String()).First(&channel)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &channel, nil
}

// List retrieves all channels ordered by number then name
func (r *ChannelRepository) List(ctx context.Context) ([]*models.Channel, error) {
	var channels []*models.Channel
	result := r.db.WithContext(ctx).Order("number ASC, name ASC").Find(&channels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list channels: %w", MapGormError(result.Error))
	}
	return channels, nil
}

// Update saves the mutable channel settings
func (r *ChannelRepository) Update(ctx context.Context, channel *models.Channel) error {
	if err := Validate(channel); err != nil {
		return err
	}
	channel.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("id = ?", channel.ID).
		Select("number", "timezone", "fallback_filler_id", "watermark_id", "updated_at").
		Updates(channel)
	if result.Error != nil {
		return fmt.Errorf("failed to update channel: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a channel together with its playout and everything the playout owns
func (r *ChannelRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var playoutIDs []uint
		if err := tx.Model(&models.Playout{}).Where("channel_id = ?", id).Pluck("id", &playoutIDs).Error; err != nil {
			return MapGormError(err)
		}
		for _, pid := range playoutIDs {
			if err := deletePlayoutTree(tx, pid); err != nil {
				return err
			}
		}
		result := tx.Delete(&models.Channel{}, id)
		if result.Error != nil {
			return MapGormError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	return nil
}

// CreateWatermark inserts a watermark asset
func (r *ChannelRepository) CreateWatermark(ctx context.Context, w *models.Watermark) error {
	return r.db.createNamed(ctx, "watermarks", &w.Name, w)
}
