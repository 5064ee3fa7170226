package store

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword derives the stored credential. bcrypt salts internally.
func (s *Store) hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("store: hash password: %w", err)
	}
	return string(hash), nil
}
