package repository

import (
	"context"
	"testing"
	"time"

	"pinmap/internal/models"
	"pinmap/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	return testutil.NewDB(t)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return gormDB, mock
}

type fixture struct {
	db       *gorm.DB
	profiles ProfileRepository
	lists    ListRepository
	pins     PinRepository
	follows  FollowRepository
	likes    LikeRepository
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	return &fixture{
		db:       db,
		profiles: NewProfileRepository(db),
		lists:    NewListRepository(db),
		pins:     NewPinRepository(db),
		follows:  NewFollowRepository(db),
		likes:    NewLikeRepository(db),
	}
}

func (f *fixture) profile(t *testing.T, username string) *models.Profile {
	t.Helper()
	p := &models.Profile{AuthSubject: "sub|" + username, Username: username, DisplayName: username}
	require.NoError(t, f.profiles.Create(context.Background(), p))
	return p
}

func (f *fixture) list(t *testing.T, owner *models.Profile, name string, public bool, minutes int) *models.List {
	t.Helper()
	l := &models.List{UserID: owner.ID, Name: name, IsPublic: public, CreatedAt: baseTime.Add(time.Duration(minutes) * time.Minute)}
	require.NoError(t, f.lists.Create(context.Background(), l))
	return l
}

func (f *fixture) pin(t *testing.T, l *models.List, name string, lat, lng float64, minutes int) *models.Pin {
	t.Helper()
	p := &models.Pin{
		UserID:    l.UserID,
		ListID:    l.ID,
		Name:      name,
		Lat:       lat,
		Lng:       lng,
		CreatedAt: baseTime.Add(time.Duration(minutes) * time.Minute),
	}
	require.NoError(t, f.pins.Create(context.Background(), p))
	return p
}
