package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/playout/internal/models"
	"gorm.io/gorm"
)

// BlockRepository handles blocks, templates and their groups
type BlockRepository struct {
	db *DB
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(db *DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// CreateGroup inserts a block group
func (r *BlockRepository) CreateGroup(ctx context.Context, g *models.BlockGroup) error {
	return r.db.createNamed(ctx, "block_groups", &g.Name, g)
}

// CreateBlock inserts a block and its items
func (r *BlockRepository) CreateBlock(ctx context.Context, b *models.Block) error {
	return r.db.createNamed(ctx, "blocks", &b.Name, b)
}

// GetBlock retrieves a block with its items in index order
func (r *BlockRepository) GetBlock(ctx context.Context, id uint) (*models.Block, error) {
	var b models.Block
	result := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("idx ASC, id ASC") }).
		First(&b, id)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &b, nil
}

// CreateTemplateGroup inserts a template group
func (r *BlockRepository) CreateTemplateGroup(ctx context.Context, g *models.TemplateGroup) error {
	return r.db.createNamed(ctx, "template_groups", &g.Name, g)
}

// CreateTemplate inserts a template and its block placements
func (r *BlockRepository) CreateTemplate(ctx context.Context, t *models.Template) error {
	return r.db.createNamed(ctx, "templates", &t.Name, t)
}

// GetTemplate retrieves a template with placements ordered by time of day
func (r *BlockRepository) GetTemplate(ctx context.Context, id uint) (*models.Template, error) {
	var t models.Template
	result := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("start_time ASC, id ASC") }).
		First(&t, id)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &t, nil
}

// ListBlocks retrieves every block of a group ordered by name
func (r *BlockRepository) ListBlocks(ctx context.Context, groupID uint) ([]models.Block, error) {
	var blocks []models.Block
	if err := r.db.WithContext(ctx).Where("block_group_id = ?", groupID).Order("name ASC").Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", MapGormError(err))
	}
	return blocks, nil
}
