package middleware

import (
	"context"
	"log/slog"
	"strings"

	"pinmap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// IdentityResolver maps a verified identity to a profile id, provisioning the
// profile on first use.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id Identity) (uint, error)
}

// Auth holds the token verifier and profile resolver shared by the auth middlewares.
type Auth struct {
	verifier *TokenVerifier
	resolver IdentityResolver
}

// NewAuth returns the authentication middleware set.
func NewAuth(verifier *TokenVerifier, resolver IdentityResolver) *Auth {
	return &Auth{verifier: verifier, resolver: resolver}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (a *Auth) authenticate(c *fiber.Ctx, raw string) error {
	id, err := a.verifier.Verify(raw)
	if err != nil {
		return models.NewUnauthorizedError("Invalid or expired token")
	}
	userID, err := a.resolver.ResolveIdentity(c.UserContext(), id)
	if err != nil {
		Logger.ErrorContext(c.UserContext(), "failed to resolve identity",
			slog.String("subject", id.Subject),
			slog.String("error", err.Error()),
		)
		return err
	}
	c.Locals("userID", userID)
	c.Locals("subject", id.Subject)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
	return nil
}

// Required rejects requests without a valid bearer token.
func (a *Auth) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}
		if err := a.authenticate(c, raw); err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.Next()
	}
}

// Optional authenticates when a bearer token is present and lets anonymous
// requests through. An invalid token is still rejected.
func (a *Auth) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}
		if err := a.authenticate(c, raw); err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.Next()
	}
}

// WebSocket accepts the token from the "token" query parameter, since browsers
// cannot set headers on upgrade requests.
func (a *Auth) WebSocket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("token")
		if raw == "" {
			var ok bool
			if raw, ok = bearerToken(c); !ok {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token required"))
			}
		}
		if err := a.authenticate(c, raw); err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.Next()
	}
}
