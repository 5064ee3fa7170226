package model

import "time"

// Friendship is an undirected edge between two users, stored as a canonical
// pair with LeftID < RightID. The composite primary key therefore rejects
// both (a,b) and (b,a) once either exists.
type Friendship struct {
	LeftID    int64     `gorm:"primaryKey;autoIncrement:false" json:"left_id"`
	RightID   int64     `gorm:"primaryKey;autoIncrement:false;index" json:"right_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`

	Left  *User `gorm:"foreignKey:LeftID;constraint:OnDelete:CASCADE" json:"-"`
	Right *User `gorm:"foreignKey:RightID;constraint:OnDelete:CASCADE" json:"-"`
}

// CanonicalPair orders two user IDs so the smaller one comes first.
func CanonicalPair(a, b int64) (left, right int64) {
	if a > b {
		return b, a
	}
	return a, b
}
