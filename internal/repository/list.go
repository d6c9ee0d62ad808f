package repository

import (
	"context"

	"pinmap/internal/cache"
	"pinmap/internal/models"

	"gorm.io/gorm"
)

// ListRepository defines persistence operations for lists.
type ListRepository interface {
	Create(ctx context.Context, list *models.List) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.List, error)
	GetWithPins(ctx context.Context, id, viewerID uint) (*models.List, error)
	ListByOwner(ctx context.Context, ownerID, viewerID uint, includePrivate bool) ([]*models.List, error)
	ListPublicByOwners(ctx context.Context, ownerIDs []uint, viewerID uint, limit int) ([]*models.List, error)
	LikedBy(ctx context.Context, userID uint, limit int) ([]*models.List, error)
	Update(ctx context.Context, list *models.List) error
	Delete(ctx context.Context, id uint) error
}

type listRepository struct {
	db *gorm.DB
}

// NewListRepository returns a new ListRepository implementation.
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db}
}

// applyListDetails adds subqueries to fetch counts and liked status in a single query.
func applyListDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "lists.*, " +
		"(SELECT COUNT(*) FROM pins WHERE pins.list_id = lists.id) AS pins_count, " +
		"(SELECT COUNT(*) FROM list_likes WHERE list_likes.list_id = lists.id) AS likes_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM list_likes WHERE list_likes.list_id = lists.id AND list_likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

func (r *listRepository) Create(ctx context.Context, list *models.List) error {
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.List, error) {
	var list models.List
	if err := applyListDetails(readDB(r.db).WithContext(ctx), viewerID).
		Preload("Owner").
		First(&list, id).Error; err != nil {
		return nil, notFoundOr(err, "List", id)
	}
	return &list, nil
}

func (r *listRepository) GetWithPins(ctx context.Context, id, viewerID uint) (*models.List, error) {
	var list models.List
	if err := applyListDetails(readDB(r.db).WithContext(ctx), viewerID).
		Preload("Owner").
		Preload("Pins", func(db *gorm.DB) *gorm.DB {
			return applyPinDetails(db, viewerID).Order("pins.created_at DESC, pins.id DESC")
		}).
		First(&list, id).Error; err != nil {
		return nil, notFoundOr(err, "List", id)
	}
	return &list, nil
}

func (r *listRepository) ListByOwner(ctx context.Context, ownerID, viewerID uint, includePrivate bool) ([]*models.List, error) {
	q := applyListDetails(readDB(r.db).WithContext(ctx), viewerID).
		Preload("Owner").
		Where("lists.user_id = ?", ownerID)
	if !includePrivate {
		q = q.Where("lists.is_public = ?", true)
	}

	var lists []*models.List
	if err := q.Order("lists.created_at DESC, lists.id DESC").Find(&lists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return lists, nil
}

func (r *listRepository) ListPublicByOwners(ctx context.Context, ownerIDs []uint, viewerID uint, limit int) ([]*models.List, error) {
	if len(ownerIDs) == 0 {
		return []*models.List{}, nil
	}
	if limit <= 0 || limit > maxAggregatePins {
		limit = maxAggregatePins
	}

	var lists []*models.List
	if err := applyListDetails(readDB(r.db).WithContext(ctx), viewerID).
		Preload("Owner").
		Where("lists.user_id IN ? AND lists.is_public = ?", ownerIDs, true).
		Order("lists.created_at DESC, lists.id DESC").
		Limit(limit).
		Find(&lists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return lists, nil
}

// LikedBy returns lists userID liked that are still visible to them.
func (r *listRepository) LikedBy(ctx context.Context, userID uint, limit int) ([]*models.List, error) {
	var lists []*models.List
	if err := applyListDetails(readDB(r.db).WithContext(ctx), userID).
		Preload("Owner").
		Joins("JOIN list_likes ON list_likes.list_id = lists.id AND list_likes.user_id = ?", userID).
		Where("lists.is_public = ? OR lists.user_id = ?", true, userID).
		Order("list_likes.created_at DESC, lists.id DESC").
		Limit(clampLimit(limit)).
		Find(&lists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return lists, nil
}

func (r *listRepository) Update(ctx context.Context, list *models.List) error {
	if err := r.db.WithContext(ctx).Model(list).
		Select("name", "emoji", "color", "description", "is_public", "updated_at").
		Updates(list).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAggregates(ctx)
	return nil
}

// Delete removes the list together with its pins and every like pointing at either.
func (r *listRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pinIDs := tx.Model(&models.Pin{}).Select("id").Where("list_id = ?", id)
		if err := tx.Where("pin_id IN (?)", pinIDs).Delete(&models.PinLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&models.Pin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&models.ListLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.List{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "List", id)
	}
	cache.InvalidateAggregates(ctx)
	return nil
}
