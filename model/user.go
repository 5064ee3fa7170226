package model

import "time"

// User is a registered user. HashedPassword never leaves the server.
type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPassword *string   `gorm:"size:72" json:"-"`
	IsActive       *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Items are kept when the owner goes away; only the back-reference is cleared.
	Items []Item `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"items,omitempty"`
}
