package repository

import (
	"errors"

	"gorm.io/gorm"

	"salonpro-retention/logger"
)

var ErrNotFound = errors.New("record not found")

// Store is the gorm-backed data access layer. Every query is scoped to a
// business id.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{db: db, log: baseLog.With("repo", "Store")}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB { return s.db }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
