package repository

import (
	"context"
	"errors"
	"strings"

	"pinmap/internal/cache"
	"pinmap/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Profile, error)
	GetBySubject(ctx context.Context, subject string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileCountsSelect = "profiles.*, " +
	"(SELECT COUNT(*) FROM follows WHERE follows.followee_id = profiles.id) AS followers_count, " +
	"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = profiles.id) AS following_count"

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(id), &profile, cache.ProfileTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Select(profileCountsSelect).First(&profile, id).Error; err != nil {
			return notFoundOr(err, "Profile", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Profile, error) {
	if len(ids) == 0 {
		return []*models.Profile{}, nil
	}
	var profiles []*models.Profile
	if err := readDB(r.db).WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

// GetBySubject returns nil, nil when no profile exists for subject yet.
func (r *profileRepository) GetBySubject(ctx context.Context, subject string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("auth_subject = ?", subject).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := readDB(r.db).WithContext(ctx).
		Select(profileCountsSelect).
		Where("username = ?", username).
		First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "Profile", username)
	}
	return &profile, nil
}

func (r *profileRepository) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Profile{}).Where("username = ?", username)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *profileRepository) Search(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	var profiles []*models.Profile
	if err := readDB(r.db).WithContext(ctx).
		Where("LOWER(username) LIKE ? ESCAPE '\\' OR LOWER(display_name) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("username ASC").
		Limit(clampLimit(limit)).
		Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Profile already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Model(profile).Select("username", "display_name", "bio", "avatar_url", "updated_at").Updates(profile).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username is already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.ID)
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
