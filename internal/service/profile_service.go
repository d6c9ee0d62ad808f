// Package service holds the business rules that sit between HTTP handlers and
// repositories.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"pinmap/internal/cache"
	"pinmap/internal/middleware"
	"pinmap/internal/models"
	"pinmap/internal/repository"
	"pinmap/internal/validation"
)

// maxProvisionAttempts bounds the username suffix search for new profiles.
const maxProvisionAttempts = 5

type ProfileService struct {
	profiles repository.ProfileRepository
}

type UpdateProfileInput struct {
	UserID      uint
	Username    *string
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// ResolveIdentity maps a verified identity to a profile id, creating the
// profile the first time the subject is seen.
func (s *ProfileService) ResolveIdentity(ctx context.Context, id middleware.Identity) (uint, error) {
	if strings.TrimSpace(id.Subject) == "" {
		return 0, models.NewUnauthorizedError("Token has no subject")
	}

	var profileID uint
	err := cache.Aside(ctx, cache.SubjectKey(id.Subject), &profileID, cache.SubjectTTL, func() error {
		profile, err := s.provision(ctx, id)
		if err != nil {
			return err
		}
		profileID = profile.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return profileID, nil
}

func (s *ProfileService) provision(ctx context.Context, id middleware.Identity) (*models.Profile, error) {
	existing, err := s.profiles.GetBySubject(ctx, id.Subject)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	base := usernameCandidate(id)
	for attempt := 0; attempt < maxProvisionAttempts; attempt++ {
		username := base
		if attempt > 0 {
			username = withSuffix(base, fmt.Sprintf("_%d", attempt+1))
		}
		taken, err := s.profiles.UsernameTaken(ctx, username, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		profile := &models.Profile{
			AuthSubject: id.Subject,
			Username:    username,
			DisplayName: truncateRunes(strings.TrimSpace(id.Name), validation.MaxDisplayNameLength),
		}
		err = s.profiles.Create(ctx, profile)
		if err == nil {
			return profile, nil
		}
		if !models.IsCode(err, models.CodeConflict) {
			return nil, err
		}
		// Either the username was claimed concurrently or another request
		// provisioned this subject first.
		if existing, lookupErr := s.profiles.GetBySubject(ctx, id.Subject); lookupErr == nil && existing != nil {
			return existing, nil
		}
	}
	return nil, models.NewConflictError("Could not allocate a username")
}

// usernameCandidate derives a valid username from the identity, falling back
// to a stable hash of the subject.
func usernameCandidate(id middleware.Identity) string {
	var b strings.Builder
	for _, r := range validation.NormalizeUsername(id.Username) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ':
			b.WriteRune('_')
		}
	}
	candidate := b.String()
	if len(candidate) > 30 {
		candidate = candidate[:30]
	}
	if validation.ValidateUsername(candidate) == nil {
		return candidate
	}
	sum := sha256.Sum256([]byte(id.Subject))
	return "user_" + hex.EncodeToString(sum[:])[:10]
}

func withSuffix(base, suffix string) string {
	if len(base)+len(suffix) > 30 {
		base = base[:30-len(suffix)]
	}
	return base + suffix
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func (s *ProfileService) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return s.profiles.GetByUsername(ctx, validation.NormalizeUsername(username))
}

func (s *ProfileService) Search(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.profiles.Search(ctx, query, limit)
}

// UpdateProfile applies the non-nil fields of in. Username uniqueness is
// checked before writing; the unique index still catches races.
func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := validation.NormalizeUsername(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if username != profile.Username {
			taken, err := s.profiles.UsernameTaken(ctx, username, profile.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, models.NewConflictError("Username is already taken")
			}
		}
		profile.Username = username
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if err := validation.ValidateDisplayName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.DisplayName = name
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		if err := validation.ValidateAvatarURL(*in.AvatarURL); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.AvatarURL = *in.AvatarURL
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SetAvatar stores a server-hosted avatar path on the profile.
func (s *ProfileService) SetAvatar(ctx context.Context, userID uint, avatarURL string) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.AvatarURL = avatarURL
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
