package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicateActivity indicates an activity with the same ID already exists
var ErrDuplicateActivity = errors.New("activity already exists")

// isUniqueViolation matches gorm's translated error and, for drivers without a
// translator, the raw unique-violation text (23505 is the PostgreSQL code).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505")
}
