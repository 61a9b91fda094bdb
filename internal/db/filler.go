package db

import (
	"context"

	"github.com/stwalsh4118/playout/internal/models"
)

// FillerRepository handles filler presets
type FillerRepository struct {
	db *DB
}

// NewFillerRepository creates a new filler repository
func NewFillerRepository(db *DB) *FillerRepository {
	return &FillerRepository{db: db}
}

// Create inserts a filler preset
func (r *FillerRepository) Create(ctx context.Context, f *models.FillerPreset) error {
	return r.db.createNamed(ctx, "filler_presets", &f.Name, f)
}

// GetByID retrieves a filler preset
func (r *FillerRepository) GetByID(ctx context.Context, id uint) (*models.FillerPreset, error) {
	var f models.FillerPreset
	if err := r.db.first(ctx, &f, id); err != nil {
		return nil, err
	}
	return &f, nil
}
