package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuganosora/friendsvc/model"
	"go.uber.org/zap"
)

const friendsOfQuery = `
SELECT users.* FROM users
  JOIN friendships ON friendships.left_id = users.id
  WHERE friendships.right_id = ?
UNION
SELECT users.* FROM users
  JOIN friendships ON friendships.right_id = users.id
  WHERE friendships.left_id = ?
ORDER BY id`

// ListFriendships returns every stored pair as stored.
func (s *Store) ListFriendships(ctx context.Context) ([]model.Friendship, error) {
	var pairs []model.Friendship
	if err := s.db.WithContext(ctx).Order("left_id, right_id").Find(&pairs).Error; err != nil {
		return nil, s.fail("list friendships", err)
	}
	return pairs, nil
}

// ListFriendsOf returns the users on the other side of every pair that
// contains id, whichever column id is stored in.
func (s *Store) ListFriendsOf(ctx context.Context, id int64) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Raw(friendsOfQuery, id, id).Scan(&users).Error; err != nil {
		return nil, s.fail("list friends", err, zap.Int64("user_id", id))
	}
	return users, nil
}

// CreateFriendship stores the pair {id1, id2} with a single insert. The
// canonical primary key turns an existing pair, in either order, into
// ErrDuplicate; an unknown user yields a *ConstraintError.
func (s *Store) CreateFriendship(ctx context.Context, id1, id2 int64) (*model.Friendship, error) {
	if id1 == id2 {
		return nil, ErrInvalidPair
	}
	left, right := model.CanonicalPair(id1, id2)
	f := &model.Friendship{LeftID: left, RightID: right}

	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		err = s.fail("create friendship", err, zap.Int64("left_id", left), zap.Int64("right_id", right))
		if errors.Is(err, ErrDuplicate) {
			return nil, fmt.Errorf("%w: friendship %d-%d", ErrDuplicate, left, right)
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).
		Where("left_id = ? AND right_id = ?", left, right).
		First(f).Error; err != nil {
		return nil, s.fail("reload friendship", err)
	}
	return f, nil
}
