package channel

import "errors"

// Custom channel service errors
var (
	// ErrChannelNotFound indicates the requested channel does not exist
	ErrChannelNotFound = errors.New("channel not found")

	// ErrInvalidTimezone indicates the timezone is not a known IANA zone
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrScheduleNotFound indicates the program schedule to assign does not exist
	ErrScheduleNotFound = errors.New("program schedule not found")
)

// IsChannelNotFound checks if the error is a channel not found error
func IsChannelNotFound(err error) bool {
	return errors.Is(err, ErrChannelNotFound)
}

// IsInvalidTimezone checks if the error is an invalid timezone error
func IsInvalidTimezone(err error) bool {
	return errors.Is(err, ErrInvalidTimezone)
}

// IsScheduleNotFound checks if the error is a missing schedule error
func IsScheduleNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}
