package db

import (
	"context"

	"github.com/stwalsh4118/playout/internal/models"
	"gorm.io/gorm"
)

// DecoRepository handles decos, deco templates and their groups
type DecoRepository struct {
	db *DB
}

// NewDecoRepository creates a new deco repository
func NewDecoRepository(db *DB) *DecoRepository {
	return &DecoRepository{db: db}
}

// CreateGroup inserts a deco group
func (r *DecoRepository) CreateGroup(ctx context.Context, g *models.DecoGroup) error {
	return r.db.createNamed(ctx, "deco_groups", &g.Name, g)
}

// Create inserts a deco and its break content
func (r *DecoRepository) Create(ctx context.Context, d *models.Deco) error {
	return r.db.createNamed(ctx, "decos", &d.Name, d)
}

// GetByID retrieves a deco with its break content
func (r *DecoRepository) GetByID(ctx context.Context, id uint) (*models.Deco, error) {
	var d models.Deco
	if err := r.db.first(ctx, &d, id, "BreakContent"); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateTemplateGroup inserts a deco template group
func (r *DecoRepository) CreateTemplateGroup(ctx context.Context, g *models.DecoTemplateGroup) error {
	return r.db.createNamed(ctx, "deco_template_groups", &g.Name, g)
}

// CreateTemplate inserts a deco template and its windows
func (r *DecoRepository) CreateTemplate(ctx context.Context, t *models.DecoTemplate) error {
	return r.db.createNamed(ctx, "deco_templates", &t.Name, t)
}

// GetTemplate retrieves a deco template with windows ordered by start time
func (r *DecoRepository) GetTemplate(ctx context.Context, id uint) (*models.DecoTemplate, error) {
	var t models.DecoTemplate
	result := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_time ASC, id ASC") }).
		First(&t, id)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &t, nil
}
