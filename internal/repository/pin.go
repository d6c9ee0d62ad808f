package repository

import (
	"context"
	"time"

	"pinmap/internal/cache"
	"pinmap/internal/models"
	"pinmap/internal/spots"

	"gorm.io/gorm"
)

// PinQuery filters the aggregate pin fetch. The zero value returns the most
// recent public pins anywhere.
type PinQuery struct {
	ViewerID uint
	Box      spots.BoundingBox
	Since    time.Time
	Limit    int
}

// PinRepository defines persistence operations for pins.
type PinRepository interface {
	Create(ctx context.Context, pin *models.Pin) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.Pin, error)
	Update(ctx context.Context, pin *models.Pin) error
	Delete(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, ownerID uint, limit int) ([]*models.Pin, error)
	ListPublicByOwners(ctx context.Context, ownerIDs []uint, viewerID uint, limit int) ([]*models.Pin, error)
	VisiblePins(ctx context.Context, q PinQuery) ([]*models.Pin, error)
}

type pinRepository struct {
	db *gorm.DB
}

// NewPinRepository returns a new PinRepository implementation.
func NewPinRepository(db *gorm.DB) PinRepository {
	return &pinRepository{db: db}
}

func applyPinDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "pins.*, (SELECT COUNT(*) FROM pin_likes WHERE pin_likes.pin_id = pins.id) AS likes_count"
	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM pin_likes WHERE pin_likes.pin_id = pins.id AND pin_likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

func (r *pinRepository) Create(ctx context.Context, pin *models.Pin) error {
	if err := r.db.WithContext(ctx).Omit("List", "Owner").Create(pin).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAggregates(ctx)
	return nil
}

func (r *pinRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Pin, error) {
	var pin models.Pin
	if err := applyPinDetails(readDB(r.db).WithContext(ctx), viewerID).
		Preload("List").
		Preload("Owner").
		First(&pin, id).Error; err != nil {
		return nil, notFoundOr(err, "Pin", id)
	}
	return &pin, nil
}

func (r *pinRepository) Update(ctx context.Context, pin *models.Pin) error {
	if err := r.db.WithContext(ctx).Model(pin).
		Select("list_id", "name", "address", "place_ref", "lat", "lng", "rating", "note", "visited", "updated_at").
		Updates(pin).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAggregates(ctx)
	return nil
}

func (r *pinRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pin_id = ?", id).Delete(&models.PinLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Pin{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "Pin", id)
	}
	cache.InvalidateAggregates(ctx)
	return nil
}

// ListByOwner returns the owner's pins in every list, private ones included.
func (r *pinRepository) ListByOwner(ctx context.Context, ownerID uint, limit int) ([]*models.Pin, error) {
	if limit <= 0 || limit > maxAggregatePins {
		limit = maxAggregatePins
	}
	var pins []*models.Pin
	if err := applyPinDetails(readDB(r.db).WithContext(ctx), ownerID).
		Preload("List").
		Where("pins.user_id = ?", ownerID).
		Order("pins.created_at DESC, pins.id DESC").
		Limit(limit).
		Find(&pins).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return pins, nil
}

func (r *pinRepository) ListPublicByOwners(ctx context.Context, ownerIDs []uint, viewerID uint, limit int) ([]*models.Pin, error) {
	if len(ownerIDs) == 0 {
		return []*models.Pin{}, nil
	}
	if limit <= 0 || limit > maxAggregatePins {
		limit = maxAggregatePins
	}
	var pins []*models.Pin
	if err := applyPinDetails(readDB(r.db).WithContext(ctx), viewerID).
		Preload("List").
		Preload("Owner").
		Joins("JOIN lists ON lists.id = pins.list_id").
		Where("pins.user_id IN ? AND lists.is_public = ?", ownerIDs, true).
		Order("pins.created_at DESC, pins.id DESC").
		Limit(limit).
		Find(&pins).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return pins, nil
}

// VisiblePins returns pins in public lists plus the viewer's own pins, with
// list metadata loaded for aggregation.
func (r *pinRepository) VisiblePins(ctx context.Context, q PinQuery) ([]*models.Pin, error) {
	limit := q.Limit
	if limit <= 0 || limit > maxAggregatePins {
		limit = maxAggregatePins
	}

	db := readDB(r.db).WithContext(ctx).
		Preload("List").
		Joins("JOIN lists ON lists.id = pins.list_id")
	if q.ViewerID != 0 {
		db = db.Where("lists.is_public = ? OR lists.user_id = ?", true, q.ViewerID)
	} else {
		db = db.Where("lists.is_public = ?", true)
	}
	if !q.Box.IsZero() {
		db = db.Where("pins.lat BETWEEN ? AND ? AND pins.lng BETWEEN ? AND ?",
			q.Box.MinLat, q.Box.MaxLat, q.Box.MinLng, q.Box.MaxLng)
	}
	if !q.Since.IsZero() {
		db = db.Where("pins.created_at >= ?", q.Since)
	}

	var pins []*models.Pin
	if err := db.Select("pins.*").
		Order("pins.created_at DESC, pins.id DESC").
		Limit(limit).
		Find(&pins).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return pins, nil
}
