// Package store is the data-access layer: users, items, friendships and JSON
// blobs on top of an injected *gorm.DB.
package store

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultLimit is the window size used when a caller does not pick one.
const DefaultLimit = 100

// Window selects a slice of an ordered listing.
type Window struct {
	Skip  int
	Limit int
}

// Store runs every query against one persistence handle.
type Store struct {
	db         *gorm.DB
	logger     *zap.Logger
	bcryptCost int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for failed operations.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.bcryptCost = cost }
}

// New creates a Store over db.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:         db,
		logger:     zap.NewNop(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) window(q *gorm.DB, w Window) *gorm.DB {
	skip := w.Skip
	if skip < 0 {
		skip = 0
	}
	limit := w.Limit
	if limit < 0 {
		limit = 0
	}
	return q.Offset(skip).Limit(limit)
}

// fail classifies err and logs it with the operation name.
func (s *Store) fail(op string, err error, fields ...zap.Field) error {
	err = s.classify(err)
	fields = append(fields, zap.Error(err))
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug("store: "+op+" found nothing", fields...)
		return err
	}
	s.logger.Warn("store: "+op+" failed", fields...)
	return err
}
