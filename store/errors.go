package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique key (email, friendship pair, blob id) is taken.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidPair is returned for a friendship of a user with themselves.
	ErrInvalidPair = errors.New("a user cannot be friends with themselves")
)

// ConstraintError wraps a write the database rejected for integrity reasons
// other than a duplicate key (foreign key, NOT NULL, ...). Error() returns the
// driver's own message.
type ConstraintError struct {
	Err error
}

func (e *ConstraintError) Error() string { return e.Err.Error() }

func (e *ConstraintError) Unwrap() error { return e.Err }

// classify maps driver errors onto the store's error kinds, keeping the
// original message.
func (s *Store) classify(err error) error {
	if err == nil ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrInvalidPair) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	translated := err
	if t, ok := s.db.Dialector.(gorm.ErrorTranslator); ok {
		translated = t.Translate(err)
	}
	switch {
	case errors.Is(translated, gorm.ErrDuplicatedKey) || isUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrDuplicate, err.Error())
	case errors.Is(translated, gorm.ErrForeignKeyViolated) || isConstraintViolation(err):
		return &ConstraintError{Err: err}
	}
	return err
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}

func isConstraintViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint") ||
		strings.Contains(msg, "foreign key") ||
		strings.Contains(msg, "not null") ||
		strings.Contains(msg, "cannot be null")
}
