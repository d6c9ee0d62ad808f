package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

const (
	MaxListNameLength    = 60
	MaxEmojiRunes        = 8
	MaxDescriptionLength = 500
	MaxPinNameLength     = 200
	MaxAddressLength     = 300
	MaxNoteLength        = 2000
	MaxPlaceRefLength    = 200
)

// ValidateListName requires 1-60 characters after trimming.
func ValidateListName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("list name is required")
	}
	if !govalidator.RuneLength(name, "1", fmt.Sprint(MaxListNameLength)) {
		return fmt.Errorf("list name must be at most %d characters", MaxListNameLength)
	}
	return nil
}

// ValidateEmoji allows an empty value or a short grapheme sequence without whitespace.
func ValidateEmoji(emoji string) error {
	if emoji == "" {
		return nil
	}
	if utf8.RuneCountInString(emoji) > MaxEmojiRunes {
		return fmt.Errorf("emoji must be at most %d characters", MaxEmojiRunes)
	}
	if strings.ContainsAny(emoji, " \t\n") || govalidator.IsASCII(emoji) {
		return fmt.Errorf("emoji must be an emoji")
	}
	return nil
}

// ValidateColor accepts an empty value, #rgb or #rrggbb.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !strings.HasPrefix(color, "#") || !govalidator.IsHexcolor(color) {
		return fmt.Errorf("color must be a hex color like #ff8800")
	}
	return nil
}

// ValidateDescription limits list descriptions.
func ValidateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidatePinName requires a non-blank place name.
func ValidatePinName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("place name is required")
	}
	if utf8.RuneCountInString(name) > MaxPinNameLength {
		return fmt.Errorf("place name must be at most %d characters", MaxPinNameLength)
	}
	return nil
}

// ValidatePinText checks the optional free-text fields of a pin.
func ValidatePinText(address, note, placeRef string) error {
	if utf8.RuneCountInString(address) > MaxAddressLength {
		return fmt.Errorf("address must be at most %d characters", MaxAddressLength)
	}
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return fmt.Errorf("note must be at most %d characters", MaxNoteLength)
	}
	if len(placeRef) > MaxPlaceRefLength || (placeRef != "" && !govalidator.IsPrintableASCII(placeRef)) {
		return fmt.Errorf("place reference is invalid")
	}
	return nil
}

// ValidateRating accepts nil or an integer 1..5.
func ValidateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < 1 || *rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}
