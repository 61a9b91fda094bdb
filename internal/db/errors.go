package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository errors. Callers test them with the Is helpers below.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate record")
	ErrForeignKey   = errors.New("foreign key constraint violation")
	ErrInvalidInput = errors.New("invalid input")
	// ErrBusy means another connection holds the sqlite write lock
	ErrBusy = errors.New("database busy")
)

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate checks if error is a unique constraint violation
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsForeignKey checks if error references a row that does not exist
func IsForeignKey(err error) bool {
	return errors.Is(err, ErrForeignKey)
}

// IsInvalidInput checks if error is a validation or CHECK constraint failure
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsBusy checks if error is a lost write lock race
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// MapGormError translates gorm and sqlite driver errors into the repository
// errors above. Errors it does not recognise are returned unchanged.
func MapGormError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	// already mapped
	for _, known := range []error{ErrNotFound, ErrDuplicate, ErrForeignKey, ErrInvalidInput, ErrBusy} {
		if errors.Is(err, known) {
			return err
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"):
		return ErrDuplicate
	case strings.Contains(msg, "foreign key constraint"):
		return ErrForeignKey
	case strings.Contains(msg, "check constraint"), strings.Contains(msg, "not null constraint"):
		return errors.Join(ErrInvalidInput, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "database table is locked"):
		return errors.Join(ErrBusy, err)
	}

	return err
}
