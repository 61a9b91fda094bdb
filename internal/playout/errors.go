package playout

import (
	"errors"

	"github.com/stwalsh4118/playout/internal/collection"
)

var (
	// ErrBuildInProgress indicates another build of the same playout is running
	ErrBuildInProgress = errors.New("build already in progress")

	// ErrPlayoutNotFound indicates the requested playout does not exist
	ErrPlayoutNotFound = errors.New("playout not found")

	// ErrNoSchedule indicates the playout has no program schedule or templates to generate from
	ErrNoSchedule = errors.New("playout has no schedule")

	// ErrInvalidPolicy indicates a schedule item whose playout mode settings cannot be used
	ErrInvalidPolicy = errors.New("invalid schedule item policy")

	// ErrEmptySource and ErrMissingSource are recovered per schedule entry
	ErrEmptySource   = collection.ErrEmptySource
	ErrMissingSource = collection.ErrMissingSource
)

// ResolverError is a fatal content lookup failure; the pass commits nothing
type ResolverError = collection.ResolverError

// IsBuildInProgress checks if the error is a build contention error
func IsBuildInProgress(err error) bool {
	return errors.Is(err, ErrBuildInProgress)
}

// IsPlayoutNotFound checks if the error is a playout not found error
func IsPlayoutNotFound(err error) bool {
	return errors.Is(err, ErrPlayoutNotFound)
}

// IsNoSchedule checks if the error is a missing schedule error
func IsNoSchedule(err error) bool {
	return errors.Is(err, ErrNoSchedule)
}

// isConfiguration reports errors that skip one schedule entry instead of failing the pass
func isConfiguration(err error) bool {
	return collection.IsConfiguration(err) || errors.Is(err, ErrInvalidPolicy)
}

// configurationReason is the metrics label of a configuration error
func configurationReason(err error) string {
	switch {
	case errors.Is(err, collection.ErrEmptySource):
		return "empty_source"
	case errors.Is(err, collection.ErrMissingSource):
		return "missing_source"
	case errors.Is(err, collection.ErrAmbiguousSource):
		return "ambiguous_source"
	case errors.Is(err, collection.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, ErrInvalidPolicy):
		return "invalid_policy"
	default:
		return "other"
	}
}
