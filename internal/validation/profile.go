// Package validation checks user input before it reaches a write.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// Usernames that collide with routes or look official.
var reservedUsernames = map[string]struct{}{
	"me":       {},
	"admin":    {},
	"api":      {},
	"search":   {},
	"settings": {},
	"spots":    {},
	"lists":    {},
	"pins":     {},
	"feed":     {},
	"pinmap":   {},
	"support":  {},
}

const (
	MaxDisplayNameLength = 80
	MaxBioLength         = 280
)

// ValidateUsername validates username format and reserved names.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters of lowercase letters, numbers, and underscores")
	}
	if _, reserved := reservedUsernames[username]; reserved {
		return fmt.Errorf("username is reserved")
	}
	return nil
}

// NormalizeUsername lowercases and trims a candidate username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateDisplayName limits display names to MaxDisplayNameLength runes.
func ValidateDisplayName(name string) error {
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return fmt.Errorf("display name must be at most %d characters", MaxDisplayNameLength)
	}
	return nil
}

// ValidateBio limits bios to MaxBioLength runes.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("bio must be at most %d characters", MaxBioLength)
	}
	return nil
}

// ValidateAvatarURL accepts an empty value or an absolute http(s) URL.
func ValidateAvatarURL(raw string) error {
	if raw == "" {
		return nil
	}
	if !govalidator.IsRequestURL(raw) || !(strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")) {
		return fmt.Errorf("avatar URL must be an absolute http(s) URL")
	}
	return nil
}

// ValidateCoordinates checks lat/lng are finite degrees within range.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates must be finite numbers")
	}
	if !govalidator.InRangeFloat64(lat, -90, 90) {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if !govalidator.InRangeFloat64(lng, -180, 180) {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}
