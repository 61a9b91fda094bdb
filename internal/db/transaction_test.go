package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/db/dbtest"
	"gorm.io/gorm"
)

func TestMapGormError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", gorm.ErrRecordNotFound, db.IsNotFound},
		{"unique", errors.New("UNIQUE constraint failed: channels.unique_id"), db.IsDuplicate},
		{"foreign key", errors.New("FOREIGN KEY constraint failed"), db.IsForeignKey},
		{"check", errors.New("CHECK constraint failed: duration > 0"), db.IsInvalidInput},
		{"locked", errors.New("database is locked"), db.IsBusy},
		{"already mapped", errors.Join(db.ErrBusy, errors.New("x")), db.IsBusy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(db.MapGormError(tt.err)))
		})
	}

	assert.Nil(t, db.MapGormError(nil))
	other := errors.New("disk full")
	assert.Equal(t, other, db.MapGormError(other))
}

func TestWithTransaction_RetriesBusy(t *testing.T) {
	database, _ := dbtest.Open(t)

	calls := 0
	err := database.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithTransaction_GivesUp(t *testing.T) {
	database, _ := dbtest.Open(t)

	calls := 0
	err := database.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		calls++
		return errors.New("database is locked")
	})
	require.Error(t, err)
	assert.True(t, db.IsBusy(db.MapGormError(err)))
	assert.Equal(t, 4, calls)
}

func TestWithTransaction_OtherErrorsAreNotRetried(t *testing.T) {
	database, _ := dbtest.Open(t)

	calls := 0
	err := database.WithTransaction(context.Background(), func(tx *gorm.DB) error {
		calls++
		return db.ErrDuplicate
	})
	assert.True(t, db.IsDuplicate(err))
	assert.Equal(t, 1, calls)
}
