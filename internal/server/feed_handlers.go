package server

import (
	"pinmap/internal/feed"
	"pinmap/internal/models"
	"pinmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// @Summary Composed feed
// @Description The caller's own activity merged with public activity of followed users.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param order query string false "recent or popular"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} service.FeedPage
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	result, err := s.feed.Feed(c.UserContext(), service.FeedQuery{
		ViewerID: viewerID(c),
		Order:    feed.ParseOrder(c.Query("order")),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// GetFollowingGroups handles GET /api/feed/following
// @Summary Followed users with their public lists
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Success 200 {array} feed.Group
// @Router /feed/following [get]
func (s *Server) GetFollowingGroups(c *fiber.Ctx) error {
	groups, err := s.feed.FollowingGroups(c.UserContext(), viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(emptyIfNil(groups))
}
