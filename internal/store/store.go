// Package store is the persistence collaborator: short-lived transactional
// CRUD over the catalog, saved offers and the business card. Each mutation
// returns a definitive result; partial completion of bulk operations is
// reported with exact counts.
package store

import (
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	// ErrConflict signals a uniqueness clash (category name, product code)
	// the caller can name precisely, as opposed to a stale id.
	ErrConflict = errors.New("conflict")
	// ErrNotFound signals a stale or unknown id; the caller should refresh
	// its state rather than retry.
	ErrNotFound = errors.New("not found")
	// ErrForbidden signals an operation the schema never allows, such as
	// deleting the fallback category.
	ErrForbidden = errors.New("forbidden")
)

type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

func New(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}
