package service

import (
	"context"
	"testing"

	"pinmap/internal/models"
	"pinmap/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	maria := h.user(t, "maria")
	jon := h.user(t, "jon")

	err := h.follows.Follow(ctx, maria, maria)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	err = h.follows.Follow(ctx, maria, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	require.NoError(t, h.follows.Follow(ctx, jon, maria))
	require.NoError(t, h.follows.Follow(ctx, jon, maria))

	events := h.pub.OfType(notifications.EventFollowed)
	require.Len(t, events, 1, "a repeated follow does not notify again")
	assert.Equal(t, []uint{maria}, events[0].Recipients)

	following, err := h.follows.IsFollowing(ctx, jon, maria)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := h.follows.Followers(ctx, maria, 10, 0)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, jon, followers[0].ID)

	require.NoError(t, h.follows.Unfollow(ctx, jon, maria))
	require.NoError(t, h.follows.Unfollow(ctx, jon, maria))
	following, err = h.follows.IsFollowing(ctx, jon, maria)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestLikeService(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	maria := h.user(t, "maria")
	jon := h.user(t, "jon")

	public := h.list(t, maria, "Tacos", true)
	private := h.list(t, maria, "Secret", false)
	p := h.pin(t, maria, public, "Tacombi", 40.7231, -73.9950, 0)
	hidden := h.pin(t, maria, private, "Hidden", 40.73, -74.0, 0)

	t.Run("Cannot like own content", func(t *testing.T) {
		_, err := h.likes.LikeList(ctx, maria, public.ID)
		assert.True(t, models.IsCode(err, models.CodeValidation))
		_, err = h.likes.LikePin(ctx, maria, p.ID)
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("Cannot like private content of others", func(t *testing.T) {
		_, err := h.likes.LikeList(ctx, jon, private.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		_, err = h.likes.LikePin(ctx, jon, hidden.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("Like and unlike a list", func(t *testing.T) {
		l, err := h.likes.LikeList(ctx, jon, public.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, l.LikesCount)
		assert.True(t, l.Liked)

		l, err = h.likes.LikeList(ctx, jon, public.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, l.LikesCount)

		liked, err := h.lists.LikedLists(ctx, jon, 10)
		require.NoError(t, err)
		assert.Len(t, liked, 1)

		l, err = h.likes.UnlikeList(ctx, jon, public.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, l.LikesCount)
		assert.False(t, l.Liked)
	})

	t.Run("Like and unlike a pin", func(t *testing.T) {
		got, err := h.likes.LikePin(ctx, jon, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikesCount)
		assert.True(t, got.Liked)

		got, err = h.likes.UnlikePin(ctx, jon, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.LikesCount)
	})
}
