package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/playout/internal/models"
	"gorm.io/gorm"
)

// ScheduleRepository handles program schedules and their items
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a program schedule and its items
func (r *ScheduleRepository) Create(ctx context.Context, s *models.ProgramSchedule) error {
	return r.db.createNamed(ctx, "program_schedules", &s.Name, s)
}

// AddItem appends an item to an existing schedule
func (r *ScheduleRepository) AddItem(ctx context.Context, item *models.ProgramScheduleItem) error {
	if err := Validate(item); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add schedule item: %w", MapGormError(err))
	}
	return nil
}

// GetWithItems retrieves a schedule with its items in index order
func (r *ScheduleRepository) GetWithItems(ctx context.Context, id uint) (*models.ProgramSchedule, error) {
	var s models.ProgramSchedule
	result := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("idx ASC, id ASC") }).
		First(&s, id)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &s, nil
}

// List retrieves all schedules ordered by name
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ProgramSchedule, error) {
	var schedules []models.ProgramSchedule
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", MapGormError(err))
	}
	return schedules, nil
}
