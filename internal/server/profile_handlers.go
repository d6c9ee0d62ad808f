package server

import (
	"io"

	"pinmap/internal/models"
	"pinmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProfileResponse is a profile as seen by the viewer.
type ProfileResponse struct {
	*models.Profile
	IsFollowing bool `json:"is_following"`
}

// GetMyProfile handles GET /api/users/me
// @Summary Current profile
// @Description Returns the caller's profile, provisioning it on first use.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profiles.GetByID(c.UserContext(), viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,display_name=string,bio=string} true "Fields to change"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username    *string `json:"username"`
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profiles.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:      viewerID(c),
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UploadAvatar handles POST /api/users/me/avatar
// @Summary Upload avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image (jpeg, png, gif or webp)"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/avatar [post]
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("avatar file is required"))
	}
	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unable to read uploaded file"))
	}

	profile, err := s.avatars.Upload(c.UserContext(), service.UploadAvatarInput{
		UserID:  viewerID(c),
		Content: content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// SearchUsers handles GET /api/users/search?q=...
// @Summary Search profiles
// @Tags users
// @Produce json
// @Param q query string true "Username or display name fragment"
// @Param limit query int false "Max results"
// @Success 200 {array} models.Profile
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	profiles, err := s.profiles.Search(c.UserContext(), c.Query("q"), page.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(emptyIfNil(profiles))
}

// GetUserProfile handles GET /api/users/:username
// @Summary Profile by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	profile, err := s.profiles.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	resp := ProfileResponse{Profile: profile}
	if viewer := viewerID(c); viewer != 0 && viewer != profile.ID {
		if resp.IsFollowing, err = s.follows.IsFollowing(ctx, viewer, profile.ID); err != nil {
			return models.RespondWithAppError(c, err)
		}
	}
	return c.JSON(resp)
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
