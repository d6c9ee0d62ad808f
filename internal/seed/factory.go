package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pinmap/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// jitter keeps repeated saves of one venue inside the same 3-decimal spot.
const jitter = 0.0002

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   time.Time
	days  int
}

// NewFactory returns a Factory whose output is fully determined by seed.
func NewFactory(db *gorm.DB, seed int64, now time.Time, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 30
	}
	return &Factory{db: db, faker: gofakeit.New(seed), now: now, days: maxDays}
}

// PlaceRef is the stable external reference seeded pins carry for a venue.
func PlaceRef(city string, v Venue) string {
	return "seed:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(city+"/"+v.Name)).String()
}

func (f *Factory) createdAt() time.Time {
	back := time.Duration(f.faker.Number(0, f.days*24*60)) * time.Minute
	return f.now.Add(-back)
}

// Profile creates a profile with a unique username derived from a fake name.
func (f *Factory) Profile(ctx context.Context, n int) (*models.Profile, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s_%d", first, last, n))
	username = strings.NewReplacer(" ", "", "'", "", "-", "").Replace(username)
	if len(username) > 30 {
		username = username[:30]
	}
	p := &models.Profile{
		AuthSubject: "seed|" + uuid.NewString(),
		Username:    username,
		DisplayName: first + " " + last,
		Bio:         f.faker.Sentence(8),
		CreatedAt:   f.createdAt(),
	}
	if err := f.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// List creates a list from a theme. Roughly one list in five is private.
func (f *Factory) List(ctx context.Context, owner *models.Profile, theme Theme) (*models.List, error) {
	l := &models.List{
		UserID:      owner.ID,
		Name:        theme.Name,
		Emoji:       theme.Emoji,
		Color:       theme.Color,
		Description: f.faker.Sentence(6),
		IsPublic:    f.faker.Number(1, 5) != 1,
		CreatedAt:   f.createdAt(),
	}
	if err := f.db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}

// Pin saves venue into list with slightly jittered coordinates.
func (f *Factory) Pin(ctx context.Context, list *models.List, city string, v Venue) (*models.Pin, error) {
	p := &models.Pin{
		UserID:    list.UserID,
		ListID:    list.ID,
		Name:      v.Name,
		Address:   v.Address,
		PlaceRef:  PlaceRef(city, v),
		Lat:       v.Lat + f.faker.Float64Range(-jitter, jitter),
		Lng:       v.Lng + f.faker.Float64Range(-jitter, jitter),
		Note:      f.faker.Sentence(5),
		Visited:   f.faker.Bool(),
		CreatedAt: f.createdAt(),
	}
	if f.faker.Number(1, 3) != 1 {
		rating := f.faker.Number(1, 5)
		p.Rating = &rating
	}
	if err := f.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Pick returns a random element index in [0, n).
func (f *Factory) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

// Shuffle returns a permutation of [0, n).
func (f *Factory) Shuffle(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	f.faker.ShuffleInts(idx)
	return idx
}
