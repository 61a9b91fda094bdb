package timeline

import "errors"

var (
	// ErrNotGenerated is returned when the playout has no timeline at the requested instant
	// (never built, or the instant lies beyond the generated horizon)
	ErrNotGenerated = errors.New("timeline not generated for this time")

	// ErrOffAir is returned when the instant falls in a recorded gap
	ErrOffAir = errors.New("channel is off air")
)

// IsNotGenerated checks if the error is a missing timeline error
func IsNotGenerated(err error) bool {
	return errors.Is(err, ErrNotGenerated)
}

// IsOffAir checks if the error is an off-air error
func IsOffAir(err error) bool {
	return errors.Is(err, ErrOffAir)
}
