package seed

import (
	"context"
	"testing"
	"time"

	"pinmap/internal/models"
	"pinmap/internal/spots"
	"pinmap/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresets(t *testing.T) {
	p, err := LoadPresets()
	require.NoError(t, err)
	assert.Contains(t, p.CityKeys(), "nyc")
	assert.NotEmpty(t, p.Themes)
	for _, v := range p.Cities["nyc"].Venues {
		assert.True(t, spots.ValidCoordinates(v.Lat, v.Lng), v.Name)
	}
}

func TestParsePresets_Rejects(t *testing.T) {
	cases := map[string]string{
		"malformed": "cities: [",
		"no cities": "themes: [{name: x}]",
		"no themes": "cities: {a: {name: A, venues: [{name: v, lat: 1, lng: 1}]}}",
		"no venues": "cities: {a: {name: A}}\nthemes: [{name: x}]",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parsePresets([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestPlaceRef_Stable(t *testing.T) {
	v := Venue{Name: "Joe's Pizza"}
	assert.Equal(t, PlaceRef("nyc", v), PlaceRef("nyc", v))
	assert.NotEqual(t, PlaceRef("nyc", v), PlaceRef("lisbon", v))
}

func TestSeed(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	opts := DefaultOptions()
	opts.Users = 6
	opts.Follows = 2
	opts.Likes = 2
	opts.Now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	res, err := Seed(ctx, db, opts)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Profiles)
	assert.Equal(t, 12, res.Lists)
	assert.Equal(t, 60, res.Pins)
	assert.Equal(t, 12, res.Follows)

	var follows []models.Follow
	require.NoError(t, db.Find(&follows).Error)
	for _, f := range follows {
		assert.NotEqual(t, f.FollowerID, f.FolloweeID)
	}

	// Jitter never moves a save more than one cell per axis from its venue.
	var pins []*models.Pin
	require.NoError(t, db.Find(&pins).Error)
	grid := spots.NewGrid(spots.DefaultPrecision)
	byRef := map[string]map[string]bool{}
	for _, p := range pins {
		assert.False(t, p.CreatedAt.After(opts.Now))
		if byRef[p.PlaceRef] == nil {
			byRef[p.PlaceRef] = map[string]bool{}
		}
		byRef[p.PlaceRef][grid.Key(p.Lat, p.Lng)] = true
	}
	for ref, keys := range byRef {
		assert.LessOrEqual(t, len(keys), 4, ref)
	}
}

func TestSeed_CleanAndUnknownCity(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	opts := DefaultOptions()
	opts.Users = 3
	opts.Follows = 1
	opts.Likes = 1

	_, err := Seed(ctx, db, opts)
	require.NoError(t, err)

	opts.Clean = true
	opts.Seed = 7
	res, err := Seed(ctx, db, opts)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	assert.Equal(t, int64(res.Profiles), count)

	opts.City = "atlantis"
	_, err = Seed(ctx, db, opts)
	assert.ErrorContains(t, err, "unknown city")
}
