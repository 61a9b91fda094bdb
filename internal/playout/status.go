package playout

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/playout/internal/db"
	"github.com/stwalsh4118/playout/internal/logger"
	"github.com/stwalsh4118/playout/internal/models"
)

// recordStatus overwrites the build status row. It runs outside the build
// transaction and survives caller cancellation so failures are always recorded.
func (s *Service) recordStatus(ctx context.Context, playoutID uint, buildErr error) {
	status := &models.PlayoutBuildStatus{
		PlayoutID: playoutID,
		LastBuild: s.now().UTC(),
		Success:   buildErr == nil,
	}
	if buildErr != nil {
		status.Message = buildErr.Error()
	}

	if err := s.repos.Playouts.SaveStatus(context.WithoutCancel(ctx), status); err != nil {
		logger.Log.Error().
			Err(err).
			Uint("playout_id", playoutID).
			Msg("Failed to save build status")
	}
}

// Status returns the outcome of the most recent build, nil if the playout
// has never been built
func (s *Service) Status(ctx context.Context, playoutID uint) (*models.PlayoutBuildStatus, error) {
	status, err := s.repos.Playouts.Status(ctx, playoutID)
	if db.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build status: %w", err)
	}
	return status, nil
}
