package service

import (
	"context"
	"testing"

	"pinmap/internal/models"
	"pinmap/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	maria := h.user(t, "maria")
	jon := h.user(t, "jon")
	require.NoError(t, h.follows.Follow(ctx, jon, maria))

	t.Run("Defaults to public and notifies followers", func(t *testing.T) {
		l, err := h.lists.CreateList(ctx, CreateListInput{UserID: maria, Name: " Tacos ", Emoji: "🌮", Color: "#FF0000"})
		require.NoError(t, err)
		assert.True(t, l.IsPublic)
		assert.Equal(t, "Tacos", l.Name)
		assert.Equal(t, "#ff0000", l.Color)
		require.NotNil(t, l.Owner)

		events := h.pub.OfType(notifications.EventListCreated)
		require.Len(t, events, 1)
		assert.Equal(t, []uint{jon}, events[0].Recipients)
	})

	t.Run("Private lists stay quiet", func(t *testing.T) {
		l, err := h.lists.CreateList(ctx, CreateListInput{UserID: maria, Name: "Secret", IsPublic: ptr(false)})
		require.NoError(t, err)
		assert.False(t, l.IsPublic)
		assert.Len(t, h.pub.OfType(notifications.EventListCreated), 1)
	})

	t.Run("Validation", func(t *testing.T) {
		cases := []CreateListInput{
			{UserID: maria, Name: ""},
			{UserID: maria, Name: "ok", Color: "red"},
			{UserID: maria, Name: "ok", Emoji: "abc"},
		}
		for _, in := range cases {
			_, err := h.lists.CreateList(ctx, in)
			assert.True(t, models.IsCode(err, models.CodeValidation), "%+v", in)
		}
	})
}

func TestListVisibilityAndOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	maria := h.user(t, "maria")
	jon := h.user(t, "jon")

	public := h.list(t, maria, "Tacos", true)
	private := h.list(t, maria, "Secret", false)
	h.pin(t, maria, private, "Hidden bar", 40.73, -74.0, 0)

	t.Run("Private list is missing for others", func(t *testing.T) {
		_, err := h.lists.GetList(ctx, private.ID, jon)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		_, err = h.lists.GetList(ctx, private.ID, 0)
		assert.True(t, models.IsCode(err, models.CodeNotFound))

		got, err := h.lists.GetList(ctx, private.ID, maria)
		require.NoError(t, err)
		assert.Len(t, got.Pins, 1)
	})

	t.Run("ListsByOwner", func(t *testing.T) {
		own, err := h.lists.ListsByOwner(ctx, maria, maria)
		require.NoError(t, err)
		assert.Len(t, own, 2)

		others, err := h.lists.ListsByOwner(ctx, maria, jon)
		require.NoError(t, err)
		assert.Len(t, others, 1)

		_, err = h.lists.ListsByOwner(ctx, 999, jon)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("Only the owner edits", func(t *testing.T) {
		_, err := h.lists.UpdateList(ctx, UpdateListInput{UserID: jon, ListID: public.ID, Name: ptr("Mine")})
		assert.True(t, models.IsCode(err, models.CodeForbidden))

		_, err = h.lists.UpdateList(ctx, UpdateListInput{UserID: jon, ListID: private.ID, Name: ptr("Mine")})
		assert.True(t, models.IsCode(err, models.CodeNotFound))

		assert.True(t, models.IsCode(h.lists.DeleteList(ctx, jon, public.ID), models.CodeForbidden))
	})

	t.Run("Owner update", func(t *testing.T) {
		updated, err := h.lists.UpdateList(ctx, UpdateListInput{UserID: maria, ListID: public.ID, IsPublic: ptr(false), Description: ptr("best in town")})
		require.NoError(t, err)
		assert.False(t, updated.IsPublic)
		assert.Equal(t, "best in town", updated.Description)

		_, err = h.lists.UpdateList(ctx, UpdateListInput{UserID: maria, ListID: public.ID, Name: ptr("")})
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("Owner delete", func(t *testing.T) {
		require.NoError(t, h.lists.DeleteList(ctx, maria, private.ID))
		_, err := h.lists.GetList(ctx, private.ID, maria)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}
