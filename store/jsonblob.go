package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kasuganosora/friendsvc/model"
	"gorm.io/datatypes"
)

// CreateJSONBlob stores doc under id.
func (s *Store) CreateJSONBlob(ctx context.Context, id int64, doc map[string]interface{}) (*model.JsonBlob, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: encode json blob: %w", err)
	}
	blob := &model.JsonBlob{ID: id, JSON: datatypes.JSON(raw)}
	if err := s.db.WithContext(ctx).Create(blob).Error; err != nil {
		return nil, s.fail("create json blob", err)
	}
	return blob, nil
}

// GetJSONBlob returns the blob stored under id.
func (s *Store) GetJSONBlob(ctx context.Context, id int64) (*model.JsonBlob, error) {
	var blob model.JsonBlob
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&blob).Error; err != nil {
		return nil, s.fail("get json blob", err)
	}
	return &blob, nil
}
