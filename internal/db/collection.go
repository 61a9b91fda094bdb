package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/playout/internal/models"
	"gorm.io/gorm"
)

// CollectionRepository persists every content-source definition: collections,
// multi collections, smart collections, playlists and rerun collections
type CollectionRepository struct {
	db *DB
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db *DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// CreateCollection inserts a collection and its items
func (r *CollectionRepository) CreateCollection(ctx context.Context, c *models.Collection) error {
	return r.db.createNamed(ctx, "collections", &c.Name, c)
}

// AddItems appends media items to a collection
func (r *CollectionRepository) AddItems(ctx context.Context, collectionID uint, mediaItemIDs ...uint) error {
	if len(mediaItemIDs) == 0 {
		return nil
	}
	rows := make([]models.CollectionItem, 0, len(mediaItemIDs))
	for _, id := range mediaItemIDs {
		rows = append(rows, models.CollectionItem{CollectionID: collectionID, MediaItemID: id})
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to add collection items: %w", MapGormError(err))
	}
	return nil
}

// GetCollection retrieves a collection with its items
func (r *CollectionRepository) GetCollection(ctx context.Context, id uint) (*models.Collection, error) {
	var c models.Collection
	if err := r.db.first(ctx, &c, id, "Items"); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCollection removes a collection and its memberships. Schedule items,
// block items, fillers, break content and rerun collections that pointed at
// it keep their rows with the reference nulled; builds then treat them as
// sources with nothing to play.
func (r *CollectionRepository) DeleteCollection(ctx context.Context, id uint) error {
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		owned := []any{&models.CollectionItem{}, &models.MultiCollectionItem{}, &models.PlaylistItem{}}
		for _, m := range owned {
			if err := tx.Where("collection_id = ?", id).Delete(m).Error; err != nil {
				return MapGormError(err)
			}
		}
		referencing := []any{
			&models.ProgramScheduleItem{},
			&models.BlockItem{},
			&models.FillerPreset{},
			&models.DecoBreakContent{},
			&models.RerunCollection{},
		}
		for _, m := range referencing {
			if err := tx.Model(m).Where("collection_id = ?", id).Update("collection_id", nil).Error; err != nil {
				return MapGormError(err)
			}
		}
		result := tx.Delete(&models.Collection{}, id)
		if result.Error != nil {
			return MapGormError(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

// CreateMultiCollection inserts a multi collection and its children
func (r *CollectionRepository) CreateMultiCollection(ctx context.Context, mc *models.MultiCollection) error {
	return r.db.createNamed(ctx, "multi_collections", &mc.Name, mc)
}

// GetMultiCollection retrieves a multi collection with its children
func (r *CollectionRepository) GetMultiCollection(ctx context.Context, id uint) (*models.MultiCollection, error) {
	var mc models.MultiCollection
	if err := r.db.first(ctx, &mc, id, "Items"); err != nil {
		return nil, err
	}
	return &mc, nil
}

// CreateSmartCollection inserts a smart collection
func (r *CollectionRepository) CreateSmartCollection(ctx context.Context, sc *models.SmartCollection) error {
	return r.db.createNamed(ctx, "smart_collections", &sc.Name, sc)
}

// GetSmartCollection retrieves a smart collection
func (r *CollectionRepository) GetSmartCollection(ctx context.Context, id uint) (*models.SmartCollection, error) {
	var sc models.SmartCollection
	if err := r.db.first(ctx, &sc, id); err != nil {
		return nil, err
	}
	return &sc, nil
}

// CreatePlaylist inserts a playlist and its entries
func (r *CollectionRepository) CreatePlaylist(ctx context.Context, p *models.Playlist) error {
	return r.db.createNamed(ctx, "playlists", &p.Name, p)
}

// GetPlaylist retrieves a playlist with entries in index order
func (r *CollectionRepository) GetPlaylist(ctx context.Context, id uint) (*models.Playlist, error) {
	var p models.Playlist
	result := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("idx ASC, id ASC") }).
		First(&p, id)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &p, nil
}

// CreateRerunCollection inserts a rerun collection
func (r *CollectionRepository) CreateRerunCollection(ctx context.Context, rc *models.RerunCollection) error {
	return r.db.createNamed(ctx, "rerun_collections", &rc.Name, rc)
}

// GetRerunCollection retrieves a rerun collection
func (r *CollectionRepository) GetRerunCollection(ctx context.Context, id uint) (*models.RerunCollection, error) {
	var rc models.RerunCollection
	if err := r.db.first(ctx, &rc, id); err != nil {
		return nil, err
	}
	return &rc, nil
}
