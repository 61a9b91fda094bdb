package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/playout/internal/models"
	"gorm.io/gorm"
)

// MediaRepository handles database operations for library media items
type MediaRepository struct {
	db *DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a new media item into the database
func (r *MediaRepository) Create(ctx context.Context, item *models.MediaItem) error {
	if err := Validate(item); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Create(item)
	if result.Error != nil {
		return fmt.Errorf("failed to create media item: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a media item by id
func (r *MediaRepository) GetByID(ctx context.Context, id uint) (*models.MediaItem, error) {
	var item models.MediaItem
	if err := r.db.first(ctx, &item, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDs retrieves the media items with the given ids. Missing ids are
// silently absent from the result.
func (r *MediaRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.MediaItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.MediaItem
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get media items: %w", MapGormError(result.Error))
	}
	return items, nil
}

// List retrieves media items with pagination; limit <= 0 returns every item
func (r *MediaRepository) List(ctx context.Context, limit, offset int) ([]models.MediaItem, error) {
	var items []models.MediaItem
	query := r.db.WithContext(ctx).Order("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	result := query.Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list media items: %w", MapGormError(result.Error))
	}
	return items, nil
}

// ListByShow retrieves the episodes of a show ordered by season and episode.
// NULL seasons and episodes sort last.
func (r *MediaRepository) ListByShow(ctx context.Context, show string) ([]models.MediaItem, error) {
	var items []models.MediaItem
	result := r.db.WithContext(ctx).
		Where("show_title = ?", show).
		Order("COALESCE(season, 9999999) ASC, COALESCE(episode, 9999999) ASC, id ASC").
		Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list media items by show: %w", MapGormError(result.Error))
	}
	return items, nil
}

// Count returns the total number of media items
func (r *MediaRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.MediaItem{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count media items: %w", MapGormError(result.Error))
	}
	return count, nil
}

// Delete removes a media item. Timeline entries, collection/playlist/block
// memberships, schedule items and break content that reference it are
// deleted; filler presets and rerun history keep their rows with the
// reference nulled.
func (r *MediaRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		cascades := []any{
			&models.PlayoutItem{},
			&models.CollectionItem{},
			&models.PlaylistItem{},
			&models.BlockItem{},
			&models.ProgramScheduleItem{},
			&models.DecoBreakContent{},
		}
		for _, m := range cascades {
			if err := tx.Where("media_item_id = ?", id).Delete(m).Error; err != nil {
				return MapGormError(err)
			}
		}

		nulls := []any{&models.FillerPreset{}, &models.RerunHistory{}}
		for _, m := range nulls {
			if err := tx.Model(m).Where("media_item_id = ?", id).Update("media_item_id", nil).Error; err != nil {
				return MapGormError(err)
			}
		}

		result := tx.Delete(&models.MediaItem{}, id)
		if result.Error != nil {
			return MapGormError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete media item: %w", err)
	}
	return nil
}
