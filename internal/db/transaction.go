package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	// busyRetries is how often a transaction is retried after SQLITE_BUSY
	busyRetries = 3
	busyBackoff = 50 * time.Millisecond
)

// WithTransaction executes fn within a database transaction. The transaction
// is committed if fn returns nil and rolled back if it returns an error or
// panics. A transaction that loses a write lock race is retried from the
// start, so fn must not keep state between attempts.
func (db *DB) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = db.DB.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if !IsBusy(MapGormError(err)) || attempt == busyRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(busyBackoff << attempt):
		}
	}
	return fmt.Errorf("transaction error: %w", err)
}

// WithSnapshot runs read-only fn inside a transaction so every query sees
// the same committed state, even while another process commits a build
func (db *DB) WithSnapshot(ctx context.Context, fn func(*gorm.DB) error) error {
	if err := db.DB.WithContext(ctx).Transaction(fn); err != nil {
		return fmt.Errorf("snapshot error: %w", err)
	}
	return nil
}
