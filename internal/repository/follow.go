package repository

import (
	"context"

	"pinmap/internal/cache"
	"pinmap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow graph operations.
type FollowRepository interface {
	// Follow creates the edge and reports whether it was new.
	Follow(ctx context.Context, followerID, followeeID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error)
	FollowerIDs(ctx context.Context, followeeID uint) ([]uint, error)
	Followers(ctx context.Context, followeeID uint, limit, offset int) ([]*models.Profile, error)
	Following(ctx context.Context, followerID uint, limit, offset int) ([]*models.Profile, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateProfile(ctx, followerID)
		cache.InvalidateProfile(ctx, followeeID)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidateProfile(ctx, followerID)
		cache.InvalidateProfile(ctx, followeeID)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	ids := []uint{}
	if err := readDB(r.db).WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Order("followee_id").
		Pluck("followee_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, followeeID uint) ([]uint, error) {
	ids := []uint{}
	if err := readDB(r.db).WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", followeeID).
		Order("follower_id").
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Followers(ctx context.Context, followeeID uint, limit, offset int) ([]*models.Profile, error) {
	return r.edgeProfiles(ctx, "follows.follower_id", "follows.followee_id", followeeID, limit, offset)
}

func (r *followRepository) Following(ctx context.Context, followerID uint, limit, offset int) ([]*models.Profile, error) {
	return r.edgeProfiles(ctx, "follows.followee_id", "follows.follower_id", followerID, limit, offset)
}

// edgeProfiles loads the profiles on the joinCol side of edges whose filterCol equals id.
func (r *followRepository) edgeProfiles(ctx context.Context, joinCol, filterCol string, id uint, limit, offset int) ([]*models.Profile, error) {
	var profiles []*models.Profile
	if err := readDB(r.db).WithContext(ctx).
		Select(profileCountsSelect).
		Joins("JOIN follows ON profiles.id = "+joinCol).
		Where(filterCol+" = ?", id).
		Order("follows.created_at DESC, profiles.id").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}
