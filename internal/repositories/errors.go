package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the repository-level not-found sentinel.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err is a not-found condition from the
// store or from a repository.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
