// Package store is the content store: posts, categories, tags and comments
// persisted through gorm.
package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"quill/internal/errs"
	"quill/internal/logging"
	"quill/internal/utils"
)

// maxSlugRetries bounds how often a write is retried after a concurrent
// writer claims the chosen slug.
const maxSlugRetries = 50

type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, log: logging.Component(logger, "store")}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// isDuplicate reports a unique constraint violation from any supported driver.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// translate converts a gorm error into the typed error for entity.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NotFound("%s not found", entity)
	case isDuplicate(err):
		return errs.Conflict("", err)
	default:
		var e *errs.Error
		if errors.As(err, &e) {
			return e
		}
		return errs.Server("Server Error", err)
	}
}

// slugBase derives the base slug, falling back to the entity kind when the
// source has no alphanumerics.
func slugBase(source, kind string) string {
	if base := utils.Slugify(source); base != "" {
		return base
	}
	return kind
}

// freeSlug returns base when no other row of model uses it, otherwise the
// candidate one past the highest numbered base-N in use.
func freeSlug(tx *gorm.DB, model any, base string, excludeID uint) (string, error) {
	q := tx.Model(model).Where("(slug = ? OR slug LIKE ?)", base, base+"-%")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var used []string
	if err := q.Pluck("slug", &used).Error; err != nil {
		return "", err
	}
	return utils.NextSlug(base, used), nil
}

func slugTaken(tx *gorm.DB, model any, slug string, excludeID uint) bool {
	var count int64
	q := tx.Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return q.Count(&count).Error == nil && count > 0
}

// writeWithUniqueSlug runs write with a free slug and retries when a
// concurrent writer claims the same slug first. A duplicate on any other
// column is reported as a Conflict on conflictField.
func (s *Store) writeWithUniqueSlug(ctx context.Context, model any, base string, excludeID uint, conflictField string, write func(tx *gorm.DB, slug string) error) error {
	db := s.conn(ctx)
	for attempt := 0; attempt < maxSlugRetries; attempt++ {
		slug, err := freeSlug(db, model, base, excludeID)
		if err != nil {
			return translate(err, "slug")
		}
		err = write(db, slug)
		if err == nil {
			return nil
		}
		if !isDuplicate(err) {
			return translate(err, conflictField)
		}
		if !slugTaken(db, model, slug, excludeID) {
			return errs.Conflict(conflictField, err)
		}
		s.log.Debug("[Store] slug claimed concurrently, retrying", "slug", slug)
	}
	return errs.Conflict("slug", nil)
}
