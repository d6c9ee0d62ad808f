package repository

import (
	"context"

	"pinmap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores likes on lists and pins. Like and Unlike are idempotent
// and report whether anything changed.
type LikeRepository interface {
	LikeList(ctx context.Context, userID, listID uint) (bool, error)
	UnlikeList(ctx context.Context, userID, listID uint) (bool, error)
	LikePin(ctx context.Context, userID, pinID uint) (bool, error)
	UnlikePin(ctx context.Context, userID, pinID uint) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) insert(ctx context.Context, value interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) remove(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Where(query, args...).Delete(model)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) LikeList(ctx context.Context, userID, listID uint) (bool, error) {
	return r.insert(ctx, &models.ListLike{UserID: userID, ListID: listID})
}

func (r *likeRepository) UnlikeList(ctx context.Context, userID, listID uint) (bool, error) {
	return r.remove(ctx, &models.ListLike{}, "user_id = ? AND list_id = ?", userID, listID)
}

func (r *likeRepository) LikePin(ctx context.Context, userID, pinID uint) (bool, error) {
	return r.insert(ctx, &models.PinLike{UserID: userID, PinID: pinID})
}

func (r *likeRepository) UnlikePin(ctx context.Context, userID, pinID uint) (bool, error) {
	return r.remove(ctx, &models.PinLike{}, "user_id = ? AND pin_id = ?", userID, pinID)
}
