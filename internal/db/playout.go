package db

import (
	"context"
	"fmt"
	"time"

	"github.com/stwalsh4118/playout/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const commitBatchSize = 200

// PlayoutRepository handles playouts and everything a build reads or writes
type PlayoutRepository struct {
	db *DB
}

// NewPlayoutRepository creates a new playout repository
func NewPlayoutRepository(db *DB) *PlayoutRepository {
	return &PlayoutRepository{db: db}
}

// BuildState is everything a build pass loads before it starts generating
type BuildState struct {
	Anchor             models.PlayoutAnchor
	ScheduleItemStates []models.ScheduleItemEnumeratorState
	CollectionStates   []models.CollectionEnumeratorState
	FillGroupStates    []models.FillGroupEnumeratorState
	RerunHistory       []models.RerunHistory
	Templates          []models.PlayoutTemplate
}

// BuildCommit is the complete set of mutations produced by one build pass
type BuildCommit struct {
	PlayoutID uint
	// ResetFrom, when set, removes timeline rows starting at or after it
	// before the new rows are written
	ResetFrom          *time.Time
	Anchor             models.PlayoutAnchor
	ScheduleItemStates []models.ScheduleItemEnumeratorState
	CollectionStates   []models.CollectionEnumeratorState
	FillGroupStates    []models.FillGroupEnumeratorState
	Items              []models.PlayoutItem
	Gaps               []models.PlayoutGap
	History            []models.PlayoutHistory
	RerunHistory       []models.RerunHistory
}

// Get retrieves a playout by id
func (r *PlayoutRepository) Get(ctx context.Context, id uint) (*models.Playout, error) {
	var p models.Playout
	if err := r.db.first(ctx, &p, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByChannelID retrieves the playout of a channel
func (r *PlayoutRepository) GetByChannelID(ctx context.Context, channelID uint) (*models.Playout, error) {
	var p models.Playout
	if err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).First(&p).Error; err != nil {
		return nil, MapGormError(err)
	}
	return &p, nil
}

// List retrieves every playout ordered by id
func (r *PlayoutRepository) List(ctx context.Context) ([]models.Playout, error) {
	var playouts []models.Playout
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&playouts).Error; err != nil {
		return nil, fmt.Errorf("failed to list playouts: %w", MapGormError(err))
	}
	return playouts, nil
}

// Update saves the generation settings of a playout
func (r *PlayoutRepository) Update(ctx context.Context, p *models.Playout) error {
	if err := Validate(p); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&models.Playout{}).
		Where("id = ?", p.ID).
		Select("schedule_kind", "program_schedule_id", "deco_id", "seed").
		Updates(p)
	if result.Error != nil {
		return fmt.Errorf("failed to update playout: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddTemplate binds a template to a playout
func (r *PlayoutRepository) AddTemplate(ctx context.Context, pt *models.PlayoutTemplate) error {
	if err := Validate(pt); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(pt).Error; err != nil {
		return fmt.Errorf("failed to add playout template: %w", MapGormError(err))
	}
	return nil
}

// Templates retrieves the template bindings of a playout in priority order
func (r *PlayoutRepository) Templates(ctx context.Context, playoutID uint) ([]models.PlayoutTemplate, error) {
	var templates []models.PlayoutTemplate
	err := r.db.WithContext(ctx).
		Where("playout_id = ?", playoutID).
		Order("idx ASC, id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list playout templates: %w", MapGormError(err))
	}
	return templates, nil
}

// LoadBuildState loads the anchor, every enumerator cursor, rerun history and
// template bindings of a playout from one consistent snapshot
func (r *PlayoutRepository) LoadBuildState(ctx context.Context, playoutID uint) (*BuildState, error) {
	var state BuildState

	err := r.db.WithSnapshot(ctx, func(tx *gorm.DB) error {
		err := tx.Where("playout_id = ?", playoutID).First(&state.Anchor).Error
		switch {
		case IsNotFound(err):
			state.Anchor = models.PlayoutAnchor{PlayoutID: playoutID, NextGuideGroup: 1}
		case err != nil:
			return fmt.Errorf("failed to load anchor: %w", MapGormError(err))
		}

		loads := []struct {
			name  string
			dest  any
			order string
		}{
			{"schedule item states", &state.ScheduleItemStates, "id ASC"},
			{"collection states", &state.CollectionStates, "id ASC"},
			{"fill group states", &state.FillGroupStates, "id ASC"},
			{"rerun history", &state.RerunHistory, "id ASC"},
			{"playout templates", &state.Templates, "idx ASC, id ASC"},
		}
		for _, l := range loads {
			if err := tx.Where("playout_id = ?", playoutID).Order(l.order).Find(l.dest).Error; err != nil {
				return fmt.Errorf("failed to load %s: %w", l.name, MapGormError(err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &state, nil
}

// CommitBuild writes every mutation of a build pass in one transaction
func (r *PlayoutRepository) CommitBuild(ctx context.Context, c *BuildCommit) error {
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		// A reset discards the timeline from ResetFrom: items and gaps after it
		// are removed and a gap straddling it is closed there. History and
		// rerun history are never touched.
		if c.ResetFrom != nil {
			from := c.ResetFrom.UTC()
			if err := tx.Where("playout_id = ? AND start >= ?", c.PlayoutID, from).Delete(&models.PlayoutItem{}).Error; err != nil {
				return MapGormError(err)
			}
			if err := tx.Where("playout_id = ? AND start >= ?", c.PlayoutID, from).Delete(&models.PlayoutGap{}).Error; err != nil {
				return MapGormError(err)
			}
			if err := tx.Model(&models.PlayoutGap{}).
				Where("playout_id = ? AND start < ? AND finish > ?", c.PlayoutID, from, from).
				Update("finish", from).Error; err != nil {
				return MapGormError(err)
			}
		}

		anchor := c.Anchor
		anchor.PlayoutID = c.PlayoutID
		if err := tx.Save(&anchor).Error; err != nil {
			return fmt.Errorf("anchor: %w", MapGormError(err))
		}

		if err := upsertStates(tx, c); err != nil {
			return err
		}

		batches := []struct {
			name string
			rows any
			n    int
		}{
			{"items", &c.Items, len(c.Items)},
			{"gaps", &c.Gaps, len(c.Gaps)},
			{"history", &c.History, len(c.History)},
			{"rerun history", &c.RerunHistory, len(c.RerunHistory)},
		}
		for _, b := range batches {
			if b.n == 0 {
				continue
			}
			if err := tx.CreateInBatches(b.rows, commitBatchSize).Error; err != nil {
				return fmt.Errorf("%s: %w", b.name, MapGormError(err))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit build: %w", err)
	}
	return nil
}

func upsertStates(tx *gorm.DB, c *BuildCommit) error {
	onConflict := func(key string) clause.OnConflict {
		return clause.OnConflict{
			Columns:   []clause.Column{{Name: "playout_id"}, {Name: key}},
			DoUpdates: clause.AssignmentColumns([]string{"seed", "idx"}),
		}
	}

	for _, s := range c.ScheduleItemStates {
		row := models.ScheduleItemEnumeratorState{PlayoutID: c.PlayoutID, ItemKey: s.ItemKey, Seed: s.Seed, Index: s.Index}
		if err := tx.Clauses(onConflict("item_key")).Create(&row).Error; err != nil {
			return fmt.Errorf("schedule item state %s: %w", s.ItemKey, MapGormError(err))
		}
	}
	for _, s := range c.CollectionStates {
		row := models.CollectionEnumeratorState{PlayoutID: c.PlayoutID, CollectionKey: s.CollectionKey, Seed: s.Seed, Index: s.Index}
		if err := tx.Clauses(onConflict("collection_key")).Create(&row).Error; err != nil {
			return fmt.Errorf("collection state %s: %w", s.CollectionKey, MapGormError(err))
		}
	}
	for _, s := range c.FillGroupStates {
		row := models.FillGroupEnumeratorState{PlayoutID: c.PlayoutID, FillGroupKey: s.FillGroupKey, Seed: s.Seed, Index: s.Index}
		if err := tx.Clauses(onConflict("fill_group_key")).Create(&row).Error; err != nil {
			return fmt.Errorf("fill group state %s: %w", s.FillGroupKey, MapGormError(err))
		}
	}
	return nil
}

// Items retrieves the timeline entries overlapping [from, to) ordered by start
func (r *PlayoutRepository) Items(ctx context.Context, playoutID uint, from, to time.Time) ([]models.PlayoutItem, error) {
	var items []models.PlayoutItem
	err := r.db.WithContext(ctx).
		Where("playout_id = ? AND start < ? AND finish > ?", playoutID, to.UTC(), from.UTC()).
		Order("start ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list playout items: %w", MapGormError(err))
	}
	return items, nil
}

// AllItems retrieves every timeline entry of a playout ordered by start
func (r *PlayoutRepository) AllItems(ctx context.Context, playoutID uint) ([]models.PlayoutItem, error) {
	var items []models.PlayoutItem
	err := r.db.WithContext(ctx).
		Where("playout_id = ?", playoutID).
		Order("start ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list playout items: %w", MapGormError(err))
	}
	return items, nil
}

// ItemAt retrieves the entry playing at t, or ErrNotFound when t falls in a gap
func (r *PlayoutRepository) ItemAt(ctx context.Context, playoutID uint, t time.Time) (*models.PlayoutItem, error) {
	var item models.PlayoutItem
	t = t.UTC()
	err := r.db.WithContext(ctx).
		Where("playout_id = ? AND start <= ? AND finish > ?", playoutID, t, t).
		Order("start DESC").
		First(&item).Error
	if err != nil {
		return nil, MapGormError(err)
	}
	return &item, nil
}

// Gaps retrieves the gap rows overlapping [from, to) ordered by start
func (r *PlayoutRepository) Gaps(ctx context.Context, playoutID uint, from, to time.Time) ([]models.PlayoutGap, error) {
	var gaps []models.PlayoutGap
	err := r.db.WithContext(ctx).
		Where("playout_id = ? AND start < ? AND finish > ?", playoutID, to.UTC(), from.UTC()).
		Order("start ASC, id ASC").
		Find(&gaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list playout gaps: %w", MapGormError(err))
	}
	return gaps, nil
}

// History retrieves the activation log of a playout, newest first
func (r *PlayoutRepository) History(ctx context.Context, playoutID uint, limit int) ([]models.PlayoutHistory, error) {
	var history []models.PlayoutHistory
	q := r.db.WithContext(ctx).Where("playout_id = ?", playoutID).Order("at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to list playout history: %w", MapGormError(err))
	}
	return history, nil
}

// LastHistory retrieves the most recent activation recorded under key
func (r *PlayoutRepository) LastHistory(ctx context.Context, playoutID uint, key string) (*models.PlayoutHistory, error) {
	var h models.PlayoutHistory
	err := r.db.WithContext(ctx).
		Where("playout_id = ? AND `key` = ?", playoutID, key).
		Order("at DESC, id DESC").
		First(&h).Error
	if err != nil {
		return nil, MapGormError(err)
	}
	return &h, nil
}

// LatestActivation retrieves the schedule item activation written last
func (r *PlayoutRepository) LatestActivation(ctx context.Context, playoutID uint) (*models.PlayoutHistory, error) {
	var h models.PlayoutHistory
	err := r.db.WithContext(ctx).
		Where("playout_id = ? AND schedule_item_id IS NOT NULL", playoutID).
		Order("id DESC").
		First(&h).Error
	if err != nil {
		return nil, MapGormError(err)
	}
	return &h, nil
}

// Status retrieves the outcome of the most recent build
func (r *PlayoutRepository) Status(ctx context.Context, playoutID uint) (*models.PlayoutBuildStatus, error) {
	var s models.PlayoutBuildStatus
	if err := r.db.WithContext(ctx).Where("playout_id = ?", playoutID).First(&s).Error; err != nil {
		return nil, MapGormError(err)
	}
	return &s, nil
}

// SaveStatus overwrites the single build status row of a playout
func (r *PlayoutRepository) SaveStatus(ctx context.Context, s *models.PlayoutBuildStatus) error {
	row := *s
	row.LastBuild = row.LastBuild.UTC()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "playout_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_build", "success", "message"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save build status: %w", MapGormError(err))
	}
	return nil
}

// Delete removes a playout and everything it owns
func (r *PlayoutRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := deletePlayoutTree(tx, id); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete playout: %w", err)
	}
	return nil
}

// deletePlayoutTree removes a playout row after every row it owns
func deletePlayoutTree(tx *gorm.DB, id uint) error {
	owned := []any{
		&models.PlayoutAnchor{},
		&models.ScheduleItemEnumeratorState{},
		&models.CollectionEnumeratorState{},
		&models.FillGroupEnumeratorState{},
		&models.PlayoutItem{},
		&models.PlayoutGap{},
		&models.PlayoutHistory{},
		&models.RerunHistory{},
		&models.PlayoutBuildStatus{},
		&models.PlayoutTemplate{},
	}
	for _, m := range owned {
		if err := tx.Where("playout_id = ?", id).Delete(m).Error; err != nil {
			return MapGormError(err)
		}
	}
	result := tx.Delete(&models.Playout{}, id)
	if result.Error != nil {
		return MapGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
