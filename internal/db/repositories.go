package db

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

// Repositories provides access to all database repositories
type Repositories struct {
	Channels    *ChannelRepository
	Media       *MediaRepository
	Collections *CollectionRepository
	Schedules   *ScheduleRepository
	Blocks      *BlockRepository
	Decos       *DecoRepository
	Fillers     *FillerRepository
	Playouts    *PlayoutRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Channels:    NewChannelRepository(db),
		Media:       NewMediaRepository(db),
		Collections: NewCollectionRepository(db),
		Schedules:   NewScheduleRepository(db),
		Blocks:      NewBlockRepository(db),
		Decos:       NewDecoRepository(db),
		Fillers:     NewFillerRepository(db),
		Playouts:    NewPlayoutRepository(db),
	}
}

// insertNamed validates model, disambiguates *name against table and inserts
// the model (with its associations) using tx
func insertNamed(ctx context.Context, tx *gorm.DB, table string, name *string, model any) error {
	if err := Validate(model); err != nil {
		return err
	}
	unique, err := UniqueName(ctx, tx, table, *name)
	if err != nil {
		return err
	}
	*name = unique
	if err := tx.WithContext(ctx).Create(model).Error; err != nil {
		return MapGormError(err)
	}
	return nil
}

// withNamed runs fn in a transaction, restoring *name before every attempt
// so a retried insert disambiguates the requested name again
func (db *DB) withNamed(ctx context.Context, name *string, fn func(*gorm.DB) error) error {
	requested := *name
	return db.WithTransaction(ctx, func(tx *gorm.DB) error {
		*name = requested
		return fn(tx)
	})
}

// createNamed runs insertNamed in its own transaction
func (db *DB) createNamed(ctx context.Context, table string, name *string, model any) error {
	err := db.withNamed(ctx, name, func(tx *gorm.DB) error {
		clearIDs(model)
		return insertNamed(ctx, tx, table, name, model)
	})
	if err != nil {
		return fmt.Errorf("failed to create %s row: %w", table, err)
	}
	return nil
}

// clearIDs zeroes the primary keys a rolled back insert left on model and
// its has-many children
func clearIDs(model any) {
	rv := reflect.Indirect(reflect.ValueOf(model))
	if rv.Kind() != reflect.Struct {
		return
	}
	if id := rv.FieldByName("ID"); id.IsValid() && id.CanSet() {
		id.SetZero()
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if f.Kind() != reflect.Slice || f.Type().Elem().Kind() != reflect.Struct {
			continue
		}
		for j := range f.Len() {
			if id := f.Index(j).FieldByName("ID"); id.IsValid() && id.CanSet() {
				id.SetZero()
			}
		}
	}
}

// first loads a single row by primary key into dest
func (db *DB) first(ctx context.Context, dest any, id uint, preloads ...string) error {
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p, orderedChildren)
	}
	if err := q.First(dest, id).Error; err != nil {
		return MapGormError(err)
	}
	return nil
}

// orderedChildren sorts preloaded child rows by their authoring order
func orderedChildren(tx *gorm.DB) *gorm.DB {
	return tx.Order("id ASC")
}
