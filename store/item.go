package store

import (
	"context"

	"github.com/kasuganosora/friendsvc/model"
)

// ItemCreate is the input for CreateItem.
type ItemCreate struct {
	Title       string
	Description *string
}

// CreateItem inserts an item. ownerID may be nil; an unknown owner is
// rejected by the foreign key as a *ConstraintError.
func (s *Store) CreateItem(ctx context.Context, in ItemCreate, ownerID *int64) (*model.Item, error) {
	item := &model.Item{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     ownerID,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, s.fail("create item", err)
	}
	return item, nil
}

// ListItems returns items in id order, windowed by w.
func (s *Store) ListItems(ctx context.Context, w Window) ([]model.Item, error) {
	var items []model.Item
	if err := s.window(s.db.WithContext(ctx).Order("id"), w).Find(&items).Error; err != nil {
		return nil, s.fail("list items", err)
	}
	return items, nil
}
