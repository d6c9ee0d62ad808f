package server

import (
	"pinmap/internal/models"
	"pinmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

type listRequest struct {
	Name        *string `json:"name"`
	Emoji       *string `json:"emoji"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreateList handles POST /api/lists
// @Summary Create a list
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,emoji=string,color=string,description=string,is_public=bool} true "List"
// @Success 201 {object} models.List
// @Failure 400 {object} models.ErrorResponse
// @Router /lists [post]
func (s *Server) CreateList(c *fiber.Ctx) error {
	var req listRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	list, err := s.lists.CreateList(c.UserContext(), service.CreateListInput{
		UserID:      viewerID(c),
		Name:        deref(req.Name),
		Emoji:       deref(req.Emoji),
		Color:       deref(req.Color),
		Description: deref(req.Description),
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

// GetList handles GET /api/lists/:id
// @Summary List with its pins
// @Description Private lists are only visible to their owner.
// @Tags lists
// @Produce json
// @Param id path int true "List ID"
// @Success 200 {object} models.List
// @Failure 404 {object} models.ErrorResponse
// @Router /lists/{id} [get]
func (s *Server) GetList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	list, err := s.lists.GetList(c.UserContext(), id, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(list)
}

// GetUserLists handles GET /api/users/:id/lists
// @Summary Lists of a user
// @Tags lists
// @Produce json
// @Param id path int true "Profile ID"
// @Success 200 {array} models.List
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/lists [get]
func (s *Server) GetUserLists(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	lists, err := s.lists.ListsByOwner(c.UserContext(), id, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(emptyIfNil(lists))
}

// GetLikedLists handles GET /api/lists/liked
// @Summary Lists the caller liked
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.List
// @Router /lists/liked [get]
func (s *Server) GetLikedLists(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	lists, err := s.lists.LikedLists(c.UserContext(), viewerID(c), page.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(emptyIfNil(lists))
}

// UpdateList handles PUT /api/lists/:id
// @Summary Update a list
// @Tags lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "List ID"
// @Success 200 {object} models.List
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /lists/{id} [put]
func (s *Server) UpdateList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req listRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	list, err := s.lists.UpdateList(c.UserContext(), service.UpdateListInput{
		UserID:      viewerID(c),
		ListID:      id,
		Name:        req.Name,
		Emoji:       req.Emoji,
		Color:       req.Color,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(list)
}

// DeleteList handles DELETE /api/lists/:id
// @Summary Delete a list and its pins
// @Tags lists
// @Security BearerAuth
// @Param id path int true "List ID"
// @Success 204
// @Router /lists/{id} [delete]
func (s *Server) DeleteList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.lists.DeleteList(c.UserContext(), viewerID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeList handles POST /api/lists/:id/like
// @Summary Like a list
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param id path int true "List ID"
// @Success 200 {object} models.List
// @Router /lists/{id}/like [post]
func (s *Server) LikeList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	list, err := s.likes.LikeList(c.UserContext(), viewerID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(list)
}

// UnlikeList handles DELETE /api/lists/:id/like
// @Summary Unlike a list
// @Tags lists
// @Produce json
// @Security BearerAuth
// @Param id path int true "List ID"
// @Success 200 {object} models.List
// @Router /lists/{id}/like [delete]
func (s *Server) UnlikeList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	list, err := s.likes.UnlikeList(c.UserContext(), viewerID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(list)
}
