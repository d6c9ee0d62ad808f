package service

import (
	"context"
	"strings"

	"pinmap/internal/models"
	"pinmap/internal/notifications"
	"pinmap/internal/repository"
	"pinmap/internal/validation"
)

type ListService struct {
	lists     repository.ListRepository
	profiles  repository.ProfileRepository
	follows   repository.FollowRepository
	publisher ActivityPublisher
}

type CreateListInput struct {
	UserID      uint
	Name        string
	Emoji       string
	Color       string
	Description string
	// IsPublic defaults to true when nil.
	IsPublic *bool
}

type UpdateListInput struct {
	UserID      uint
	ListID      uint
	Name        *string
	Emoji       *string
	Color       *string
	Description *string
	IsPublic    *bool
}

func NewListService(
	lists repository.ListRepository,
	profiles repository.ProfileRepository,
	follows repository.FollowRepository,
	publisher ActivityPublisher,
) *ListService {
	return &ListService{
		lists:     lists,
		profiles:  profiles,
		follows:   follows,
		publisher: publisher,
	}
}

func validateListFields(name, emoji, color, description string) error {
	if err := validation.ValidateListName(name); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmoji(emoji); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateColor(color); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDescription(description); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

func (s *ListService) CreateList(ctx context.Context, in CreateListInput) (*models.List, error) {
	list := &models.List{
		UserID:      in.UserID,
		Name:        strings.TrimSpace(in.Name),
		Emoji:       strings.TrimSpace(in.Emoji),
		Color:       strings.ToLower(strings.TrimSpace(in.Color)),
		Description: strings.TrimSpace(in.Description),
		IsPublic:    in.IsPublic == nil || *in.IsPublic,
	}
	if err := validateListFields(list.Name, list.Emoji, list.Color, list.Description); err != nil {
		return nil, err
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, err
	}

	created, err := s.lists.GetByID(ctx, list.ID, in.UserID)
	if err != nil {
		return nil, err
	}
	if created.IsPublic {
		notifyFollowers(ctx, s.publisher, s.follows, in.UserID, notifications.Event{
			Type: notifications.EventListCreated,
			Payload: ListCreatedPayload{
				Actor:  created.Owner.Summary(),
				ListID: created.ID,
				Name:   created.Name,
				Emoji:  created.Emoji,
			},
		})
	}
	return created, nil
}

// GetList returns the list with its pins. A private list is reported as
// missing to everyone but its owner.
func (s *ListService) GetList(ctx context.Context, listID, viewerID uint) (*models.List, error) {
	list, err := s.lists.GetWithPins(ctx, listID, viewerID)
	if err != nil {
		return nil, err
	}
	if !list.VisibleTo(viewerID) {
		return nil, models.NewNotFoundError("List", listID)
	}
	return list, nil
}

// ListsByOwner returns ownerID's lists; private ones only when the viewer is the owner.
func (s *ListService) ListsByOwner(ctx context.Context, ownerID, viewerID uint) ([]*models.List, error) {
	if _, err := s.profiles.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.lists.ListByOwner(ctx, ownerID, viewerID, viewerID != 0 && viewerID == ownerID)
}

func (s *ListService) LikedLists(ctx context.Context, userID uint, limit int) ([]*models.List, error) {
	return s.lists.LikedBy(ctx, userID, limit)
}

// ownedList loads listID and checks userID owns it.
func (s *ListService) ownedList(ctx context.Context, userID, listID uint) (*models.List, error) {
	list, err := s.lists.GetByID(ctx, listID, userID)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		if !list.IsPublic {
			return nil, models.NewNotFoundError("List", listID)
		}
		return nil, models.NewForbiddenError("You can only modify your own lists")
	}
	return list, nil
}

func (s *ListService) UpdateList(ctx context.Context, in UpdateListInput) (*models.List, error) {
	list, err := s.ownedList(ctx, in.UserID, in.ListID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		list.Name = strings.TrimSpace(*in.Name)
	}
	if in.Emoji != nil {
		list.Emoji = strings.TrimSpace(*in.Emoji)
	}
	if in.Color != nil {
		list.Color = strings.ToLower(strings.TrimSpace(*in.Color))
	}
	if in.Description != nil {
		list.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsPublic != nil {
		list.IsPublic = *in.IsPublic
	}
	if err := validateListFields(list.Name, list.Emoji, list.Color, list.Description); err != nil {
		return nil, err
	}

	if err := s.lists.Update(ctx, list); err != nil {
		return nil, err
	}
	return s.lists.GetByID(ctx, list.ID, in.UserID)
}

// DeleteList removes the list, its pins and every like on either.
func (s *ListService) DeleteList(ctx context.Context, userID, listID uint) error {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}
	return s.lists.Delete(ctx, listID)
}
