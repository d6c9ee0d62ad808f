package service

import (
	"context"
	"testing"
	"time"

	"pinmap/internal/config"
	"pinmap/internal/middleware"
	"pinmap/internal/models"
	"pinmap/internal/repository"
	"pinmap/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

// harness wires real repositories over an in-memory database to the services.
type harness struct {
	db  *gorm.DB
	pub *testutil.PublisherStub

	profileRepo repository.ProfileRepository
	listRepo    repository.ListRepository
	pinRepo     repository.PinRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository

	profiles  *ProfileService
	lists     *ListService
	pins      *PinService
	follows   *FollowService
	likes     *LikeService
	discovery *DiscoveryService
	feeds     *FeedService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{BucketPrecision: 3, TrendingCacheSeconds: 30, FeedMaxItems: 50}

	h := &harness{
		db:          db,
		pub:         &testutil.PublisherStub{},
		profileRepo: repository.NewProfileRepository(db),
		listRepo:    repository.NewListRepository(db),
		pinRepo:     repository.NewPinRepository(db),
		followRepo:  repository.NewFollowRepository(db),
		likeRepo:    repository.NewLikeRepository(db),
	}
	h.profiles = NewProfileService(h.profileRepo)
	h.lists = NewListService(h.listRepo, h.profileRepo, h.followRepo, h.pub)
	h.pins = NewPinService(h.pinRepo, h.listRepo, h.followRepo, h.pub)
	h.follows = NewFollowService(h.followRepo, h.profileRepo, h.pub)
	h.likes = NewLikeService(h.likeRepo, h.listRepo, h.pinRepo)
	h.discovery = NewDiscoveryService(h.pinRepo, cfg)
	h.discovery.now = func() time.Time { return baseTime }
	h.feeds = NewFeedService(h.listRepo, h.pinRepo, h.followRepo, h.profileRepo, cfg)
	h.feeds.now = func() time.Time { return baseTime }
	return h
}

func (h *harness) user(t *testing.T, username string) uint {
	t.Helper()
	id, err := h.profiles.ResolveIdentity(context.Background(), middleware.Identity{
		Subject:  "sub|" + username,
		Username: username,
	})
	require.NoError(t, err)
	return id
}

func (h *harness) list(t *testing.T, owner uint, name string, public bool) *models.List {
	t.Helper()
	l, err := h.lists.CreateList(context.Background(), CreateListInput{UserID: owner, Name: name, IsPublic: &public})
	require.NoError(t, err)
	return l
}

func (h *harness) pin(t *testing.T, owner uint, l *models.List, name string, lat, lng float64, rating int) *models.Pin {
	t.Helper()
	in := SavePinInput{UserID: owner, ListID: l.ID, Name: name, Lat: lat, Lng: lng}
	if rating > 0 {
		in.Rating = &rating
	}
	p, err := h.pins.SavePin(context.Background(), in)
	require.NoError(t, err)
	return p
}

// at rewrites a record's created_at so ordering tests do not depend on the clock.
func (h *harness) at(t *testing.T, model any, id uint, minutes int) {
	t.Helper()
	require.NoError(t, h.db.Model(model).Where("id = ?", id).
		UpdateColumn("created_at", baseTime.Add(time.Duration(minutes)*time.Minute)).Error)
}

func ptr[T any](v T) *T { return &v }
