package service

import (
	"context"
	"strings"
	"testing"

	"pinmap/internal/middleware"
	"pinmap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIdentityProvisionsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	id := middleware.Identity{Subject: "auth0|abc", Username: "Maria.Lopez", Name: "María López"}
	first, err := h.profiles.ResolveIdentity(ctx, id)
	require.NoError(t, err)
	second, err := h.profiles.ResolveIdentity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	profile, err := h.profiles.GetByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "maria_lopez", profile.Username)
	assert.Equal(t, "María López", profile.DisplayName)
}

func TestResolveIdentityUsernameFallbacks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a, err := h.profiles.ResolveIdentity(ctx, middleware.Identity{Subject: "s1", Username: "maria"})
	require.NoError(t, err)
	b, err := h.profiles.ResolveIdentity(ctx, middleware.Identity{Subject: "s2", Username: "maria"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	pb, err := h.profiles.GetByID(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "maria_2", pb.Username)

	c, err := h.profiles.ResolveIdentity(ctx, middleware.Identity{Subject: "s3", Username: "!"})
	require.NoError(t, err)
	pc, err := h.profiles.GetByID(ctx, c)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pc.Username, "user_"))
	assert.Len(t, pc.Username, 15)

	_, err = h.profiles.ResolveIdentity(ctx, middleware.Identity{Subject: "  "})
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))
}

func TestUsernameCandidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already valid", "jon_snow", "jon_snow"},
		{"dots and dashes", "Jon.Snow-88", "jon_snow_88"},
		{"too long is cut", strings.Repeat("a", 40), strings.Repeat("a", 30)},
		{"reserved falls back", "admin", "user_"},
		{"too short falls back", "ab", "user_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usernameCandidate(middleware.Identity{Subject: "sub", Username: tt.in})
			assert.True(t, strings.HasPrefix(got, tt.want), got)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	maria := h.user(t, "maria")
	h.user(t, "jon")

	t.Run("Username taken", func(t *testing.T) {
		_, err := h.profiles.UpdateProfile(ctx, UpdateProfileInput{UserID: maria, Username: ptr("jon")})
		assert.True(t, models.IsCode(err, models.CodeConflict))
	})

	t.Run("Invalid username", func(t *testing.T) {
		_, err := h.profiles.UpdateProfile(ctx, UpdateProfileInput{UserID: maria, Username: ptr("no spaces")})
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("Bio too long", func(t *testing.T) {
		_, err := h.profiles.UpdateProfile(ctx, UpdateProfileInput{UserID: maria, Bio: ptr(strings.Repeat("x", 281))})
		assert.True(t, models.IsCode(err, models.CodeValidation))
	})

	t.Run("Success", func(t *testing.T) {
		updated, err := h.profiles.UpdateProfile(ctx, UpdateProfileInput{
			UserID:      maria,
			Username:    ptr(" Maria_Eats "),
			DisplayName: ptr("Maria"),
			Bio:         ptr("tacos"),
		})
		require.NoError(t, err)
		assert.Equal(t, "maria_eats", updated.Username)

		got, err := h.profiles.GetByUsername(ctx, "MARIA_EATS")
		require.NoError(t, err)
		assert.Equal(t, "tacos", got.Bio)
	})

	t.Run("Keeping own username is not a conflict", func(t *testing.T) {
		_, err := h.profiles.UpdateProfile(ctx, UpdateProfileInput{UserID: maria, Username: ptr("maria_eats")})
		assert.NoError(t, err)
	})
}

func TestProfileSearchRequiresQuery(t *testing.T) {
	h := newHarness(t)
	_, err := h.profiles.Search(context.Background(), "  ", 10)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}
