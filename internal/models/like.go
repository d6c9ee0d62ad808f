package models

import "time"

// ListLike records a profile saving someone else's list.
type ListLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_list_like_pair" json:"user_id"`
	ListID    uint      `gorm:"not null;uniqueIndex:idx_list_like_pair;index" json:"list_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (ListLike) TableName() string {
	return "list_likes"
}

// PinLike records a profile favoriting someone else's pin.
type PinLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_pin_like_pair" json:"user_id"`
	PinID     uint      `gorm:"not null;uniqueIndex:idx_pin_like_pair;index" json:"pin_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (PinLike) TableName() string {
	return "pin_likes"
}
