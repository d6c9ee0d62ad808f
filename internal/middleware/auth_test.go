package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"pinmap/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-identity-secret-with-32-bytes!!"

type stubResolver struct {
	ids map[string]uint
	err error
}

func (s *stubResolver) ResolveIdentity(_ context.Context, id Identity) (uint, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.ids[id.Subject], nil
}

func newAuthApp(t *testing.T, resolver IdentityResolver) (*fiber.App, *TokenVerifier) {
	t.Helper()
	verifier := NewTokenVerifier(testSecret, "https://id.example", "pinmap")
	auth := NewAuth(verifier, resolver)

	app := fiber.New()
	echo := func(c *fiber.Ctx) error {
		uid, _ := c.Locals("userID").(uint)
		return c.SendString(fmt.Sprint(uid))
	}
	app.Get("/required", auth.Required(), echo)
	app.Get("/optional", auth.Optional(), echo)
	app.Get("/ws", auth.WebSocket(), echo)
	return app, verifier
}

func TestTokenVerifier(t *testing.T) {
	v := NewTokenVerifier(testSecret, "https://id.example", "pinmap")

	raw, err := v.Sign(Identity{Subject: "auth0|abc", Username: "maria"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", id.Subject)
	assert.Equal(t, "maria", id.Username)

	expired, err := v.Sign(Identity{Subject: "x"}, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	assert.Error(t, err)

	other := NewTokenVerifier(testSecret, "https://evil.example", "pinmap")
	foreign, err := other.Sign(Identity{Subject: "x"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(foreign)
	assert.Error(t, err, "issuer mismatch")

	_, err = NewTokenVerifier("another-secret-entirely-32-bytes!!!", "", "").Verify(raw)
	assert.Error(t, err, "wrong secret")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = v.Verify(unsigned)
	assert.Error(t, err)

	noSubject, err := v.Sign(Identity{}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(noSubject)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	app, v := newAuthApp(t, &stubResolver{ids: map[string]uint{"sub-1": 42}})
	token, err := v.Sign(Identity{Subject: "sub-1"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"required without header", "/required", "", fiber.StatusUnauthorized, ""},
		{"required with malformed header", "/required", "Token " + token, fiber.StatusUnauthorized, ""},
		{"required with garbage token", "/required", "Bearer nope", fiber.StatusUnauthorized, ""},
		{"required with valid token", "/required", "Bearer " + token, fiber.StatusOK, "42"},
		{"optional anonymous", "/optional", "", fiber.StatusOK, "0"},
		{"optional with valid token", "/optional", "Bearer " + token, fiber.StatusOK, "42"},
		{"optional with invalid token", "/optional", "Bearer nope", fiber.StatusUnauthorized, ""},
		{"websocket via query", "/ws?token=" + token, "", fiber.StatusOK, "42"},
		{"websocket without token", "/ws", "", fiber.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}

func TestAuthResolverFailure(t *testing.T) {
	app, v := newAuthApp(t, &stubResolver{err: models.NewInternalError(errors.New("db down"))})
	token, err := v.Sign(Identity{Subject: "sub-1"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/required", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
