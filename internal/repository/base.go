package repository

import (
	"errors"
	"strings"

	"portfolio/internal/models"
	"portfolio/internal/observability"

	"gorm.io/gorm"
)

// ErrSlugTaken is returned when an insert or update collides on a slug unique index.
var ErrSlugTaken = models.NewConflictError("Slug already exists")

// isUniqueViolation matches the translated GORM error as well as raw driver messages
// from Postgres (23505) and SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// lookupError maps a single-row read failure.
func lookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource)
	}
	return models.NewInternalError(err)
}

// writeError maps an insert or update failure, turning slug collisions into a conflict.
func writeError(err error) error {
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return models.NewInternalError(err)
}

func track(op, table string) func() {
	return observability.TrackQuery(op, table)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
