package server

import (
	"pinmap/internal/models"
	"pinmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SavePin handles POST /api/lists/:id/pins
// @Summary Save a place into a list
// @Tags pins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "List ID"
// @Param request body object{name=string,address=string,place_ref=string,lat=number,lng=number,rating=int,note=string,visited=bool} true "Place"
// @Success 201 {object} models.Pin
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /lists/{id}/pins [post]
func (s *Server) SavePin(c *fiber.Ctx) error {
	listID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Name     string   `json:"name"`
		Address  string   `json:"address"`
		PlaceRef string   `json:"place_ref"`
		Lat      *float64 `json:"lat"`
		Lng      *float64 `json:"lng"`
		Rating   *int     `json:"rating"`
		Note     string   `json:"note"`
		Visited  bool     `json:"visited"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Lat == nil || req.Lng == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("lat and lng are required"))
	}

	pin, err := s.pins.SavePin(c.UserContext(), service.SavePinInput{
		UserID:   viewerID(c),
		ListID:   listID,
		Name:     req.Name,
		Address:  req.Address,
		PlaceRef: req.PlaceRef,
		Lat:      *req.Lat,
		Lng:      *req.Lng,
		Rating:   req.Rating,
		Note:     req.Note,
		Visited:  req.Visited,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pin)
}

// GetPin handles GET /api/pins/:id
// @Summary Read a pin
// @Tags pins
// @Produce json
// @Param id path int true "Pin ID"
// @Success 200 {object} models.Pin
// @Failure 404 {object} models.ErrorResponse
// @Router /pins/{id} [get]
func (s *Server) GetPin(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	pin, err := s.pins.GetPin(c.UserContext(), id, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(pin)
}

// UpdatePin handles PUT /api/pins/:id
// @Summary Edit or move a pin
// @Description Setting list_id moves the pin to another list of the caller.
// @Tags pins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pin ID"
// @Success 200 {object} models.Pin
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /pins/{id} [put]
func (s *Server) UpdatePin(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		ListID      *uint    `json:"list_id"`
		Name        *string  `json:"name"`
		Address     *string  `json:"address"`
		PlaceRef    *string  `json:"place_ref"`
		Lat         *float64 `json:"lat"`
		Lng         *float64 `json:"lng"`
		Rating      *int     `json:"rating"`
		ClearRating bool     `json:"clear_rating"`
		Note        *string  `json:"note"`
		Visited     *bool    `json:"visited"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	pin, err := s.pins.UpdatePin(c.UserContext(), service.UpdatePinInput{
		UserID:      viewerID(c),
		PinID:       id,
		ListID:      req.ListID,
		Name:        req.Name,
		Address:     req.Address,
		PlaceRef:    req.PlaceRef,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Rating:      req.Rating,
		ClearRating: req.ClearRating,
		Note:        req.Note,
		Visited:     req.Visited,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(pin)
}

// DeletePin handles DELETE /api/pins/:id
// @Summary Delete a pin
// @Tags pins
// @Security BearerAuth
// @Param id path int true "Pin ID"
// @Success 204
// @Router /pins/{id} [delete]
func (s *Server) DeletePin(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.pins.DeletePin(c.UserContext(), viewerID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePin handles POST /api/pins/:id/like
// @Summary Like a pin
// @Tags pins
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pin ID"
// @Success 200 {object} models.Pin
// @Router /pins/{id}/like [post]
func (s *Server) LikePin(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	pin, err := s.likes.LikePin(c.UserContext(), viewerID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(pin)
}

// UnlikePin handles DELETE /api/pins/:id/like
// @Summary Unlike a pin
// @Tags pins
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pin ID"
// @Success 200 {object} models.Pin
// @Router /pins/{id}/like [delete]
func (s *Server) UnlikePin(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	pin, err := s.likes.UnlikePin(c.UserContext(), viewerID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(pin)
}
