package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	prev := client
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = client.Close()
		client = prev
	})
	return mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestAsideCachesFetchedValue(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "spot", Count: 3}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, TrendingKey(3, 10), &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(TrendingKey(3, 10)))

	var second payload
	require.NoError(t, Aside(ctx, TrendingKey(3, 10), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls, "second read is served from redis")
	assert.Equal(t, first, second)

	mr.FastForward(2 * time.Minute)
	var third payload
	require.NoError(t, Aside(ctx, TrendingKey(3, 10), &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	mr := setupMiniredis(t)
	var dest payload
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error { return errors.New("boom") })
	assert.Error(t, err)
	assert.False(t, mr.Exists("k"))
}

func TestAsideWithoutClient(t *testing.T) {
	prev := client
	client = nil
	t.Cleanup(func() { client = prev })

	var dest payload
	require.NoError(t, Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Count = 7
		return nil
	}))
	assert.Equal(t, 7, dest.Count)
	Invalidate(context.Background(), "k")
	InvalidateAggregates(context.Background())
}

func TestAsideSurvivesCorruptEntry(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var dest payload
	require.NoError(t, Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Name = "fresh"
		return nil
	}))
	assert.Equal(t, "fresh", dest.Name)
}

func TestInvalidateAggregates(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, TrendingKey(3, 10), payload{}, time.Minute))
	require.NoError(t, SetJSON(ctx, TrendingKey(3, 50), payload{}, time.Minute))
	require.NoError(t, SetJSON(ctx, HeatmapKey(3, "all"), payload{}, time.Minute))
	require.NoError(t, SetJSON(ctx, ProfileKey(1), payload{}, time.Minute))

	InvalidateAggregates(ctx)

	assert.False(t, mr.Exists(TrendingKey(3, 10)))
	assert.False(t, mr.Exists(TrendingKey(3, 50)))
	assert.False(t, mr.Exists(HeatmapKey(3, "all")))
	assert.True(t, mr.Exists(ProfileKey(1)))
}

func TestOptions(t *testing.T) {
	opts, err := Options("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = Options("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = Options("redis://%zz")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "profile:9", ProfileKey(9))
	assert.Equal(t, "subject:auth0|x", SubjectKey("auth0|x"))
	assert.Equal(t, "trending:p3:n20", TrendingKey(3, 20))
	assert.Equal(t, "cache", keyFamily("cache"))
	assert.Equal(t, "trending", keyFamily(TrendingKey(3, 20)))
}
