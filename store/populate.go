package store

import (
	"context"
	"fmt"
)

// Populate seeds two users, one unowned item and a friendship between the two
// users. It is not idempotent: a second run fails on the duplicate email.
func (s *Store) Populate(ctx context.Context) error {
	u1, err := s.CreateUser(ctx, UserCreate{Email: "mail1", Password: "pswd"})
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	u2, err := s.CreateUser(ctx, UserCreate{Email: "mail2", Password: "pswd2"})
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	desc := "to open THE door"
	if _, err := s.CreateItem(ctx, ItemCreate{Title: "THE key", Description: &desc}, nil); err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	if _, err := s.CreateFriendship(ctx, u1.ID, u2.ID); err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	return nil
}
