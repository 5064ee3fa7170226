package store

import (
	"context"
	"fmt"

	"github.com/kasuganosora/friendsvc/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserCreate is the input for CreateUser.
type UserCreate struct {
	Email    string
	Password string
}

// UserUpdate carries the mutable user fields. A nil field is skipped by
// UpdateUserPartial and written as NULL by UpdateUser.
type UserUpdate struct {
	Email    *string
	IsActive *bool
	Password *string
}

// GetUser returns the user with the given id, items preloaded.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, s.fail("get user", err, zap.Int64("user_id", id))
	}
	return &u, nil
}

// GetUserByEmail returns the user registered under email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, s.fail("get user by email", err)
	}
	return &u, nil
}

// ListUsers returns users in id order, windowed by w.
func (s *Store) ListUsers(ctx context.Context, w Window) ([]model.User, error) {
	var users []model.User
	if err := s.window(s.db.WithContext(ctx).Order("id"), w).Find(&users).Error; err != nil {
		return nil, s.fail("list users", err)
	}
	return users, nil
}

// CreateUser inserts an active user. Email uniqueness is expected to be
// checked by the caller; a lost race still surfaces as ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, in UserCreate) (*model.User, error) {
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	active := true
	u := &model.User{
		Email:          in.Email,
		HashedPassword: &hash,
		IsActive:       &active,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, s.fail("create user", err)
	}
	return u, nil
}

// UpdateUserPartial applies only the non-nil fields of in.
func (s *Store) UpdateUserPartial(ctx context.Context, id int64, in UserUpdate) (string, error) {
	cols, values, err := s.userColumns(in, true)
	if err != nil {
		return "", err
	}
	n, err := s.updateUser(ctx, id, values)
	if err != nil {
		return "", s.fail("partial update user", err, zap.Int64("user_id", id))
	}
	return fmt.Sprintf("Field(s) %v successfully updated for %d user(s)", cols, n), nil
}

// UpdateUser overwrites every mutable field; nil fields are cleared.
func (s *Store) UpdateUser(ctx context.Context, id int64, in UserUpdate) (string, error) {
	_, values, err := s.userColumns(in, false)
	if err != nil {
		return "", err
	}
	n, err := s.updateUser(ctx, id, values)
	if err != nil {
		return "", s.fail("update user", err, zap.Int64("user_id", id))
	}
	return fmt.Sprintf("%d user(s) successfully updated", n), nil
}

// updateUser reports matched rows rather than changed rows, so repeating an
// update is not mistaken for a missing user.
func (s *Store) updateUser(ctx context.Context, id int64, values map[string]interface{}) (int64, error) {
	var matched int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", id).Count(&matched).Error; err != nil {
			return err
		}
		if matched == 0 {
			return ErrNotFound
		}
		if len(values) == 0 {
			return nil
		}
		return tx.Model(&model.User{}).Where("id = ?", id).Updates(values).Error
	})
	return matched, err
}

// userColumns builds the column map for an update, in a fixed column order.
func (s *Store) userColumns(in UserUpdate, skipNil bool) ([]string, map[string]interface{}, error) {
	cols := make([]string, 0, 3)
	values := make(map[string]interface{}, 3)
	set := func(col string, present bool, v interface{}) {
		if !present && skipNil {
			return
		}
		cols = append(cols, col)
		values[col] = v
	}

	var email, active, hash interface{}
	if in.Email != nil {
		email = *in.Email
	}
	if in.IsActive != nil {
		active = *in.IsActive
	}
	if in.Password != nil {
		h, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, nil, err
		}
		hash = h
	}
	set("email", in.Email != nil, email)
	set("is_active", in.IsActive != nil, active)
	set("hashed_password", in.Password != nil, hash)
	return cols, values, nil
}

// DeleteUser removes the user. Friendships go with it and owned items lose
// their owner. Deleting an unknown id is not an error.
func (s *Store) DeleteUser(ctx context.Context, id int64) (string, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return "", s.fail("delete user", res.Error, zap.Int64("user_id", id))
	}
	return fmt.Sprintf("%d user successfully deleted", res.RowsAffected), nil
}
