package model

// Item is an object optionally owned by a User.
type Item struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string  `gorm:"index;size:255;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
	OwnerID     *int64  `gorm:"index" json:"owner_id"`
}
