package collection

import (
	"errors"
	"fmt"
)

// Configuration errors. A build recovers from these by skipping the schedule
// entry and recording a gap.
var (
	ErrMissingSource   = errors.New("content source not found")
	ErrAmbiguousSource = errors.New("content source references more than one target")
	ErrEmptySource     = errors.New("content source resolved to no items")
	ErrInvalidQuery    = errors.New("invalid smart collection query")
)

// ResolverError is a library or storage failure while resolving a source.
// It is fatal to the current build pass.
type ResolverError struct {
	Source string
	Err    error
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Source, e.Err)
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}

// IsConfiguration reports whether err is a recoverable configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrMissingSource) ||
		errors.Is(err, ErrAmbiguousSource) ||
		errors.Is(err, ErrEmptySource) ||
		errors.Is(err, ErrInvalidQuery)
}

// IsResolverError reports whether err is a fatal resolver failure
func IsResolverError(err error) bool {
	var re *ResolverError
	return errors.As(err, &re)
}
