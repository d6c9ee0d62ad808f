package spots

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinmap/internal/models"
)

var refTime = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func rating(v int) *int { return &v }

func publicList(id, owner uint) *models.List {
	return &models.List{ID: id, UserID: owner, IsPublic: true}
}

func pinAt(id uint, list *models.List, lat, lng float64) *models.Pin {
	return &models.Pin{
		ID:        id,
		UserID:    list.UserID,
		ListID:    list.ID,
		List:      list,
		Lat:       lat,
		Lng:       lng,
		CreatedAt: refTime.Add(-time.Duration(id) * time.Hour),
	}
}

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		want      int
	}{
		{"canonical", 3, 3},
		{"coarse", 1, 1},
		{"fine", 6, 6},
		{"zero falls back", 0, DefaultPrecision},
		{"too fine falls back", 9, DefaultPrecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.precision)
			assert.Equal(t, tt.want, g.Precision())
			assert.InDelta(t, math.Pow10(-tt.want), g.Tolerance(), 1e-12)
		})
	}
}

func TestGridKey(t *testing.T) {
	g := NewGrid(3)
	assert.Equal(t, "40.730,-74.002", g.Key(40.7303, -74.0023))
	assert.Equal(t, "40.745,-73.990", g.Key(40.745, -73.99))
	assert.Equal(t, "0.000,0.000", g.Key(0.0001, -0.0001))
	assert.Equal(t, "-33.869,151.209", g.Key(-33.8688, 151.2093))
}

func TestParseKeyRoundTrip(t *testing.T) {
	g := NewGrid(3)
	key := g.Key(51.5072, -0.1276)
	cell, ok := g.ParseKey(key)
	require.True(t, ok)
	assert.Equal(t, key, cell.Key())

	_, ok = g.ParseKey("not-a-key")
	assert.False(t, ok)
	_, ok = g.ParseKey("91.000,0.000")
	assert.False(t, ok)
}

func TestBucketWorkedExample(t *testing.T) {
	g := NewGrid(3)
	l1 := publicList(1, 10)
	l2 := publicList(2, 20)
	pins := []*models.Pin{
		pinAt(1, l1, 40.7303, -74.0023),
		pinAt(2, l2, 40.73031, -74.00231),
		pinAt(3, l1, 40.745, -73.99),
	}

	buckets := g.Bucket(pins)
	require.Len(t, buckets, 2)
	assert.Len(t, buckets["40.730,-74.002"], 2)
	assert.Len(t, buckets["40.745,-73.990"], 1)

	ranked := Rank(buckets, refTime)
	require.Len(t, ranked, 2)
	assert.Equal(t, "40.730,-74.002", ranked[0].Key)
	assert.Equal(t, 2, ranked[0].SaveCount)
	assert.Equal(t, 2, ranked[0].UniqueLists)
	assert.Equal(t, TierTrending, ranked[0].Tier)
	assert.Equal(t, 1, ranked[1].SaveCount)
}

func TestBucketPartitionsValidPins(t *testing.T) {
	g := NewGrid(3)
	l := publicList(1, 1)
	pins := []*models.Pin{
		pinAt(1, l, 10.1, 20.2),
		pinAt(2, l, 10.1002, 20.2003),
		pinAt(3, l, -10.5, 33.3),
		pinAt(4, l, 60, 179.9999),
	}

	buckets := g.Bucket(pins)
	total := 0
	seen := map[uint]int{}
	for key, bucket := range buckets {
		for _, p := range bucket {
			assert.Equal(t, key, g.Key(p.Lat, p.Lng))
			seen[p.ID]++
		}
		total += len(bucket)
	}
	assert.Equal(t, len(pins), total)
	for _, p := range pins {
		assert.Equal(t, 1, seen[p.ID], "pin %d must land in exactly one bucket", p.ID)
	}
}

func TestBucketToleranceBehaviour(t *testing.T) {
	g := NewGrid(3)
	l := publicList(1, 1)

	near := g.Bucket([]*models.Pin{pinAt(1, l, 48.85612, 2.35221), pinAt(2, l, 48.85648, 2.35244)})
	assert.Len(t, near, 1, "points well inside one cell share a bucket")

	far := g.Bucket([]*models.Pin{pinAt(1, l, 48.8561, 2.3522), pinAt(2, l, 48.8585, 2.3522)})
	assert.Len(t, far, 2, "points more than the tolerance apart never share a bucket")
}

func TestBucketIsIdempotent(t *testing.T) {
	g := NewGrid(3)
	l := publicList(1, 1)
	pins := []*models.Pin{pinAt(1, l, 1.0004, 2.0004), pinAt(2, l, 1.0011, 2.0), pinAt(3, l, 5, 5)}

	first := g.Bucket(pins)
	second := g.Bucket(Flatten(first))
	require.Len(t, second, len(first))
	for key, bucket := range first {
		assert.ElementsMatch(t, bucket, second[key])
	}
}

func TestBucketPreservesInputOrder(t *testing.T) {
	g := NewGrid(2)
	l := publicList(1, 1)
	pins := []*models.Pin{pinAt(3, l, 1.001, 1.001), pinAt(1, l, 1.002, 1.002), pinAt(2, l, 1.003, 1.003)}

	buckets := g.Bucket(pins)
	require.Len(t, buckets, 1)
	got := buckets["1.00,1.00"]
	require.Len(t, got, 3)
	assert.Equal(t, []uint{3, 1, 2}, []uint{got[0].ID, got[1].ID, got[2].ID})
}

func TestBucketDropsMalformedPins(t *testing.T) {
	g := NewGrid(3)
	l := publicList(1, 1)
	noList := pinAt(2, l, 1, 1)
	noList.List = nil
	zeroList := pinAt(3, l, 1, 1)
	zeroList.ListID = 0
	mismatched := pinAt(4, l, 1, 1)
	mismatched.ListID = 99

	pins := []*models.Pin{
		nil,
		pinAt(1, l, 1, 1),
		noList,
		zeroList,
		mismatched,
		pinAt(5, l, math.NaN(), 1),
		pinAt(6, l, 1, math.Inf(1)),
		pinAt(7, l, 95, 1),
		pinAt(8, l, 1, -181),
	}

	buckets := g.Bucket(pins)
	require.Len(t, buckets, 1)
	assert.Len(t, buckets["1.000,1.000"], 1)
	assert.Empty(t, g.Bucket(nil))
}

func TestVisibleHidesForeignPrivateLists(t *testing.T) {
	public := publicList(1, 1)
	private := &models.List{ID: 2, UserID: 2, IsPublic: false}
	pins := []*models.Pin{pinAt(1, public, 1, 1), pinAt(2, private, 1, 1), {ID: 3}}

	anon := Visible(pins, 0)
	require.Len(t, anon, 1)
	assert.Equal(t, uint(1), anon[0].ID)

	stranger := Visible(pins, 7)
	assert.Len(t, stranger, 1)

	owner := Visible(pins, 2)
	assert.Len(t, owner, 2)
}

func TestScoreRepresentativeExample(t *testing.T) {
	l1 := publicList(1, 1)
	l2 := publicList(2, 2)
	a := pinAt(1, l1, 1, 1)
	a.Rating = rating(5)
	a.CreatedAt = refTime.Add(-72 * time.Hour)
	b := pinAt(2, l1, 1, 1)
	c := pinAt(3, l2, 1, 1)
	c.Rating = rating(4)
	d := pinAt(4, l2, 1, 1)
	d.Rating = rating(5)
	d.CreatedAt = refTime.Add(-time.Hour)

	spot := Score("1.000,1.000", []*models.Pin{a, b, c, d}, refTime)
	assert.Equal(t, 4, spot.SaveCount)
	require.NotNil(t, spot.Representative)
	assert.Equal(t, uint(4), spot.Representative.ID)
	assert.Equal(t, TierHot, spot.Tier)
	assert.Equal(t, 2, spot.UniqueLists)
	assert.Equal(t, 2, spot.UniqueSavers)
	assert.InDelta(t, 14.0/3.0, spot.AverageRating, 1e-9)
}

func TestScoreRepresentativeTieBreaksOnID(t *testing.T) {
	l := publicList(1, 1)
	a := pinAt(9, l, 1, 1)
	b := pinAt(4, l, 1, 1)
	a.CreatedAt, b.CreatedAt = refTime, refTime

	spot := Score("k", []*models.Pin{a, b}, refTime)
	assert.Equal(t, uint(4), spot.Representative.ID)
}

func TestScoreSavesThisWeek(t *testing.T) {
	l := publicList(1, 1)
	recent := pinAt(1, l, 1, 1)
	recent.CreatedAt = refTime.Add(-24 * time.Hour)
	edge := pinAt(2, l, 1, 1)
	edge.CreatedAt = refTime.Add(-RecentWindow)
	old := pinAt(3, l, 1, 1)
	old.CreatedAt = refTime.Add(-RecentWindow - time.Second)
	future := pinAt(4, l, 1, 1)
	future.CreatedAt = refTime.Add(time.Hour)

	spot := Score("k", []*models.Pin{recent, edge, old, future}, refTime)
	assert.Equal(t, 2, spot.SavesThisWeek)
}

func TestScoreTiers(t *testing.T) {
	l1 := publicList(1, 1)
	l2 := publicList(2, 2)

	visitedFive := pinAt(1, l1, 1, 1)
	visitedFive.Rating = rating(5)
	visitedFive.Visited = true

	unvisitedFive := pinAt(2, l1, 1, 1)
	unvisitedFive.Rating = rating(5)

	tests := []struct {
		name   string
		bucket []*models.Pin
		want   Tier
	}{
		{"three saves is hot", []*models.Pin{pinAt(1, l1, 1, 1), pinAt(2, l1, 1, 1), pinAt(3, l1, 1, 1)}, TierHot},
		{"two lists is trending", []*models.Pin{pinAt(1, l1, 1, 1), pinAt(2, l2, 1, 1)}, TierTrending},
		{"visited and well rated is recommended", []*models.Pin{visitedFive}, TierRecommended},
		{"unvisited is saved", []*models.Pin{unvisitedFive}, TierSaved},
		{"plain save", []*models.Pin{pinAt(5, l1, 1, 1)}, TierSaved},
		{"empty bucket", nil, TierSaved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score("k", tt.bucket, refTime).Tier)
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	l := publicList(1, 1)
	bucket := []*models.Pin{pinAt(1, l, 1, 1), pinAt(2, l, 1.0001, 1.0001)}
	assert.Equal(t, Score("k", bucket, refTime), Score("k", bucket, refTime))
}

func TestRankOrderIsTotal(t *testing.T) {
	l := publicList(1, 1)
	mk := func(id uint, r int, age time.Duration) *models.Pin {
		p := pinAt(id, l, 0, 0)
		if r > 0 {
			p.Rating = rating(r)
		}
		p.CreatedAt = refTime.Add(-age)
		return p
	}
	buckets := map[string][]*models.Pin{
		"b": {mk(1, 3, time.Hour)},
		"a": {mk(2, 3, time.Hour)},
		"c": {mk(3, 5, 10 * time.Hour)},
		"d": {mk(4, 3, time.Minute)},
		"e": {mk(5, 0, 0), mk(6, 0, 0)},
	}

	ranked := Rank(buckets, refTime)
	keys := make([]string, len(ranked))
	for i, s := range ranked {
		keys[i] = s.Key
	}
	assert.Equal(t, []string{"e", "c", "d", "a", "b"}, keys)

	for i := 1; i < len(ranked); i++ {
		assert.False(t, Less(ranked[i], ranked[i-1]))
	}
	assert.Equal(t, 0, Positions(ranked)["e"])
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil, refTime))
}

func TestHeatmap(t *testing.T) {
	g := NewGrid(3)
	l := publicList(1, 1)
	pins := []*models.Pin{
		pinAt(1, l, 40.7303, -74.0023),
		pinAt(2, l, 40.73031, -74.00231),
		pinAt(3, l, 40.745, -73.99),
		pinAt(4, l, math.NaN(), 0),
	}

	cells := Heatmap(g, pins)
	require.Len(t, cells, 2)
	assert.Equal(t, "40.730,-74.002", cells[0].Key)
	assert.Equal(t, 2, cells[0].Weight)
	assert.InDelta(t, 40.730, cells[0].Lat, 1e-9)
	assert.InDelta(t, -74.002, cells[0].Lng, 1e-9)
	assert.Equal(t, 1, cells[1].Weight)
}

func TestBoundingBox(t *testing.T) {
	var zero BoundingBox
	assert.True(t, zero.IsZero())
	assert.True(t, zero.Contains(89, 179))

	box := BoundingBox{MinLat: 40, MinLng: -75, MaxLat: 41, MaxLng: -73}
	assert.True(t, box.Valid())
	assert.True(t, box.Contains(40.5, -74))
	assert.False(t, box.Contains(39.9, -74))

	assert.False(t, BoundingBox{MinLat: 41, MaxLat: 40, MinLng: 0, MaxLng: 1}.Valid())

	g := NewGrid(3)
	cellBox := g.CellBox(g.Cell(40.7303, -74.0023))
	assert.True(t, cellBox.Contains(40.7303, -74.0023))
}
