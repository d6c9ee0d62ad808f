// Package seed fills a database with demo profiles, lists, pins, follows and
// likes for local development.
package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"pinmap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures a seeding run.
type Options struct {
	City         string
	Users        int
	ListsPerUser int
	PinsPerList  int
	Follows      int // per user
	Likes        int // per user
	MaxDays      int
	Seed         int64
	Clean        bool
	Now          time.Time
}

// DefaultOptions is what `pinctl seed` uses without flags.
func DefaultOptions() Options {
	return Options{
		City:         "nyc",
		Users:        20,
		ListsPerUser: 2,
		PinsPerList:  5,
		Follows:      5,
		Likes:        4,
		MaxDays:      30,
		Seed:         42,
	}
}

// Result counts what a run created.
type Result struct {
	Profiles int
	Lists    int
	Pins     int
	Follows  int
	Likes    int
}

// Seed populates db according to opts.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	presets, err := LoadPresets()
	if err != nil {
		return nil, err
	}
	city, ok := presets.Cities[opts.City]
	if !ok {
		return nil, fmt.Errorf("unknown city %q (available: %v)", opts.City, presets.CityKeys())
	}
	if opts.Users <= 0 {
		return nil, fmt.Errorf("users must be positive")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	log.Printf("🌱 Seeding %s with %d users...", city.Name, opts.Users)

	if opts.Clean {
		if err := Clean(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
		log.Println("✓ Existing data cleared")
	}

	f := NewFactory(db, opts.Seed, now, opts.MaxDays)
	res := &Result{}

	profiles := make([]*models.Profile, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		p, err := f.Profile(ctx, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	res.Profiles = len(profiles)
	log.Printf("✓ %d profiles created", res.Profiles)

	var lists []*models.List
	var pins []*models.Pin
	for _, owner := range profiles {
		for _, ti := range f.Shuffle(len(presets.Themes))[:min(opts.ListsPerUser, len(presets.Themes))] {
			l, err := f.List(ctx, owner, presets.Themes[ti])
			if err != nil {
				return nil, fmt.Errorf("failed to create list: %w", err)
			}
			lists = append(lists, l)
			for _, vi := range f.Shuffle(len(city.Venues))[:min(opts.PinsPerList, len(city.Venues))] {
				p, err := f.Pin(ctx, l, opts.City, city.Venues[vi])
				if err != nil {
					return nil, fmt.Errorf("failed to create pin: %w", err)
				}
				pins = append(pins, p)
			}
		}
	}
	res.Lists, res.Pins = len(lists), len(pins)
	log.Printf("✓ %d lists with %d pins created", res.Lists, res.Pins)

	if res.Follows, err = seedFollows(ctx, db, f, profiles, opts.Follows); err != nil {
		return nil, err
	}
	log.Printf("✓ %d follows created", res.Follows)

	if res.Likes, err = seedLikes(ctx, db, f, profiles, lists, pins, opts.Likes); err != nil {
		return nil, err
	}
	log.Printf("✓ %d likes created", res.Likes)

	log.Println("🎉 Seeding completed")
	return res, nil
}

func seedFollows(ctx context.Context, db *gorm.DB, f *Factory, profiles []*models.Profile, perUser int) (int, error) {
	total := 0
	for _, follower := range profiles {
		made := 0
		for _, i := range f.Shuffle(len(profiles)) {
			if made >= perUser {
				break
			}
			followee := profiles[i]
			if followee.ID == follower.ID {
				continue
			}
			edge := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
			tx := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(edge)
			if tx.Error != nil {
				return total, fmt.Errorf("failed to create follow: %w", tx.Error)
			}
			total += int(tx.RowsAffected)
			made++
		}
	}
	return total, nil
}

// seedLikes alternates between list and pin likes, never on the user's own
// content and only on public lists.
func seedLikes(ctx context.Context, db *gorm.DB, f *Factory, profiles []*models.Profile, lists []*models.List, pins []*models.Pin, perUser int) (int, error) {
	public := make(map[uint]bool, len(lists))
	var publicLists []*models.List
	for _, l := range lists {
		if l.IsPublic {
			public[l.ID] = true
			publicLists = append(publicLists, l)
		}
	}
	var publicPins []*models.Pin
	for _, p := range pins {
		if public[p.ListID] {
			publicPins = append(publicPins, p)
		}
	}

	total := 0
	for _, user := range profiles {
		for i := 0; i < perUser; i++ {
			var row any
			if i%2 == 0 && len(publicLists) > 0 {
				l := publicLists[f.Pick(len(publicLists))]
				if l.UserID == user.ID {
					continue
				}
				row = &models.ListLike{UserID: user.ID, ListID: l.ID}
			} else if len(publicPins) > 0 {
				p := publicPins[f.Pick(len(publicPins))]
				if p.UserID == user.ID {
					continue
				}
				row = &models.PinLike{UserID: user.ID, PinID: p.ID}
			} else {
				continue
			}
			tx := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
			if tx.Error != nil {
				return total, fmt.Errorf("failed to create like: %w", tx.Error)
			}
			total += int(tx.RowsAffected)
		}
	}
	return total, nil
}

// Clean removes every row of the seeded tables, children first.
func Clean(ctx context.Context, db *gorm.DB) error {
	tables := []any{
		&models.PinLike{},
		&models.ListLike{},
		&models.Follow{},
		&models.Pin{},
		&models.List{},
		&models.Profile{},
	}
	for _, t := range tables {
		if err := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t).Error; err != nil {
			log.Printf("⚠️  Could not clear %T: %v", t, err)
			return err
		}
	}
	return nil
}
