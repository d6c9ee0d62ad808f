package server

import (
	"github.com/gofiber/fiber/v2"
)

// FeatureFlagsResponse lists configured rollouts and how they evaluate for the caller.
type FeatureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags handles GET /api/users/me/flags
// @Summary Feature flags for the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} FeatureFlagsResponse
// @Router /users/me/flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	flags := s.feed.Flags()
	return c.JSON(FeatureFlagsResponse{
		Raw:       flags.Raw(),
		Evaluated: flags.Snapshot(viewerID(c)),
	})
}
