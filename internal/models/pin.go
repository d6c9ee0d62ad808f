package models

import "time"

// Pin is a saved place. It belongs to exactly one list and to that list's owner.
type Pin struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	Owner    *Profile `gorm:"foreignKey:UserID" json:"owner,omitempty"`
	ListID   uint     `gorm:"not null;index" json:"list_id"`
	List     *List    `gorm:"foreignKey:ListID" json:"list,omitempty"`
	Name     string   `gorm:"not null;size:200" json:"name"`
	Address  string   `gorm:"size:300" json:"address"`
	PlaceRef string   `gorm:"size:200;index" json:"place_ref,omitempty"`
	Lat      float64  `gorm:"not null;index:idx_pins_coords" json:"lat"`
	Lng      float64  `gorm:"not null;index:idx_pins_coords" json:"lng"`
	Rating   *int     `json:"rating,omitempty"`
	Note     string   `gorm:"type:text" json:"note"`
	Visited  bool     `gorm:"not null;default:false" json:"visited"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// Liked indicates whether the requesting user liked this pin (computed)
	Liked     bool      `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Pin) TableName() string {
	return "pins"
}

// RatingValue returns the personal rating, 0 when unrated.
func (p *Pin) RatingValue() int {
	if p == nil || p.Rating == nil {
		return 0
	}
	return *p.Rating
}
