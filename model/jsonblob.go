package model

import "gorm.io/datatypes"

// JsonBlob stores an arbitrary JSON document under a caller-chosen id.
type JsonBlob struct {
	ID   int64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	JSON datatypes.JSON `gorm:"column:json" json:"test_json"`
}
