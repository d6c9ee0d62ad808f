package models

import "time"

// List is a named, emoji/color tagged collection of pins owned by one profile.
// Visibility decides whether its pins are discoverable by anyone but the owner.
type List struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	UserID      uint     `gorm:"not null;index" json:"user_id"`
	Owner       *Profile `gorm:"foreignKey:UserID" json:"owner,omitempty"`
	Name        string   `gorm:"not null;size:60" json:"name"`
	Emoji       string   `gorm:"size:32" json:"emoji"`
	Color       string   `gorm:"size:7" json:"color"`
	Description string   `gorm:"type:text" json:"description"`
	IsPublic    bool     `gorm:"not null;index" json:"is_public"`
	Pins        []Pin    `gorm:"foreignKey:ListID" json:"pins,omitempty"`
	// PinsCount is not persisted; computed at query time
	PinsCount int `gorm:"->;-:migration" json:"pins_count"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// Liked indicates whether the requesting user liked this list (computed)
	Liked     bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (List) TableName() string {
	return "lists"
}

// VisibleTo reports whether viewerID may see the list and its pins.
func (l *List) VisibleTo(viewerID uint) bool {
	if l == nil {
		return false
	}
	return l.IsPublic || (viewerID != 0 && l.UserID == viewerID)
}
