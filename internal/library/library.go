// Package library adapts the media library collaborator for playout builds.
// The engine never writes library rows; it only looks up identity, duration
// and grouping metadata.
package library

import (
	"context"
	"errors"

	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/models"
)

// ErrUnavailable is returned when the library cannot currently be reached
var ErrUnavailable = errors.New("media library unavailable")

// Provider is the media library collaborator consulted while resolving content
type Provider interface {
	// MediaItems returns the items with the given ids; unknown ids are absent
	MediaItems(ctx context.Context, ids []uint) ([]models.MediaItem, error)
	// AllMediaItems returns every item in the library
	AllMediaItems(ctx context.Context) ([]models.MediaItem, error)
}

// Store serves media items from the local database
type Store struct {
	media *db.MediaRepository
}

// NewStore creates a provider backed by the media repository
func NewStore(media *db.MediaRepository) *Store {
	return &Store{media: media}
}

// MediaItems implements Provider
func (s *Store) MediaItems(ctx context.Context, ids []uint) ([]models.MediaItem, error) {
	return s.media.GetByIDs(ctx, ids)
}

// AllMediaItems implements Provider
func (s *Store) AllMediaItems(ctx context.Context) ([]models.MediaItem, error) {
	return s.media.List(ctx, 0, 0)
}
