package server

import (
	"net/url"

	"pinmap/internal/models"
	"pinmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSpots handles GET /api/spots
// @Summary Ranked spots in a viewport
// @Description Buckets the pins visible to the caller into spots and ranks them.
// @Tags spots
// @Produce json
// @Param min_lat query number false "South edge"
// @Param min_lng query number false "West edge"
// @Param max_lat query number false "North edge"
// @Param max_lng query number false "East edge"
// @Param limit query int false "Max spots"
// @Success 200 {array} spots.Spot
// @Failure 400 {object} models.ErrorResponse
// @Router /spots [get]
func (s *Server) GetSpots(c *fiber.Ctx) error {
	box, err := parseBoundingBox(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	ranked, err := s.discovery.Spots(c.UserContext(), service.SpotsQuery{
		ViewerID: viewerID(c),
		Box:      box,
		Limit:    c.QueryInt("limit", 0),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(emptyIfNil(ranked))
}

// GetTrendingSpots handles GET /api/spots/trending
// @Summary Trending spots
// @Tags spots
// @Produce json
// @Param limit query int false "Max spots (default 10, max 50)"
// @Success 200 {array} spots.Spot
// @Router /spots/trending [get]
func (s *Server) GetTrendingSpots(c *fiber.Ctx) error {
	ranked, err := s.discovery.Trending(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(emptyIfNil(ranked))
}

// GetHeatmap handles GET /api/spots/heatmap
// @Summary Heat cells
// @Tags spots
// @Produce json
// @Param bbox query string false "minLat,minLng,maxLat,maxLng"
// @Success 200 {array} spots.HeatCell
// @Router /spots/heatmap [get]
func (s *Server) GetHeatmap(c *fiber.Ctx) error {
	box, err := parseBoundingBox(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	cells, err := s.discovery.Heatmap(c.UserContext(), box)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(emptyIfNil(cells))
}

// GetSpotPins handles GET /api/spots/:key/pins
// @Summary Pins saved at one spot
// @Tags spots
// @Produce json
// @Param key path string true "Spot key, e.g. 40.742,-74.006"
// @Success 200 {object} service.SpotDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /spots/{key}/pins [get]
func (s *Server) GetSpotPins(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid spot key"))
	}
	detail, err := s.discovery.SpotPins(c.UserContext(), key, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(detail)
}
