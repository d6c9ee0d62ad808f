// Package models contains data structures for the application's domain models.
package models

import "time"

// Profile is a user identity record. Profiles are provisioned from the identity
// provider's subject the first time an authenticated request arrives.
type Profile struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AuthSubject string `gorm:"uniqueIndex;not null" json:"-"`
	Username    string `gorm:"uniqueIndex;not null;size:30" json:"username"`
	DisplayName string `gorm:"size:80" json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	// FollowersCount is not persisted; computed at query time
	FollowersCount int `gorm:"->;-:migration" json:"followers_count"`
	// FollowingCount is not persisted; computed at query time
	FollowingCount int       `gorm:"->;-:migration" json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// ProfileSummary is the compact actor representation embedded in feeds and events.
type ProfileSummary struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Summary returns the compact form of p.
func (p *Profile) Summary() ProfileSummary {
	if p == nil {
		return ProfileSummary{}
	}
	return ProfileSummary{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
	}
}
