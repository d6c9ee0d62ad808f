package service

import (
	"context"
	"strings"

	"pinmap/internal/models"
	"pinmap/internal/notifications"
	"pinmap/internal/repository"
	"pinmap/internal/validation"
)

type PinService struct {
	pins      repository.PinRepository
	lists     repository.ListRepository
	follows   repository.FollowRepository
	publisher ActivityPublisher
}

type SavePinInput struct {
	UserID   uint
	ListID   uint
	Name     string
	Address  string
	PlaceRef string
	Lat      float64
	Lng      float64
	Rating   *int
	Note     string
	Visited  bool
}

// UpdatePinInput edits a pin. A non-nil ListID moves it to another list of the
// same owner; ClearRating removes the rating.
type UpdatePinInput struct {
	UserID      uint
	PinID       uint
	ListID      *uint
	Name        *string
	Address     *string
	PlaceRef    *string
	Lat         *float64
	Lng         *float64
	Rating      *int
	ClearRating bool
	Note        *string
	Visited     *bool
}

func NewPinService(
	pins repository.PinRepository,
	lists repository.ListRepository,
	follows repository.FollowRepository,
	publisher ActivityPublisher,
) *PinService {
	return &PinService{
		pins:      pins,
		lists:     lists,
		follows:   follows,
		publisher: publisher,
	}
}

func validatePinFields(p *models.Pin) error {
	if err := validation.ValidatePinName(p.Name); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePinText(p.Address, p.Note, p.PlaceRef); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateCoordinates(p.Lat, p.Lng); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateRating(p.Rating); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

// targetList loads the list a pin is written into and enforces that the pin
// owner equals the list owner.
func (s *PinService) targetList(ctx context.Context, userID, listID uint) (*models.List, error) {
	list, err := s.lists.GetByID(ctx, listID, userID)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		if !list.IsPublic {
			return nil, models.NewNotFoundError("List", listID)
		}
		return nil, models.NewForbiddenError("Pins can only be saved into your own lists")
	}
	return list, nil
}

// SavePin creates a pin in one of the caller's lists. Saving into a public list
// notifies the caller's followers.
func (s *PinService) SavePin(ctx context.Context, in SavePinInput) (*models.Pin, error) {
	list, err := s.targetList(ctx, in.UserID, in.ListID)
	if err != nil {
		return nil, err
	}

	pin := &models.Pin{
		UserID:   in.UserID,
		ListID:   list.ID,
		Name:     strings.TrimSpace(in.Name),
		Address:  strings.TrimSpace(in.Address),
		PlaceRef: strings.TrimSpace(in.PlaceRef),
		Lat:      in.Lat,
		Lng:      in.Lng,
		Rating:   in.Rating,
		Note:     in.Note,
		Visited:  in.Visited,
	}
	if err := validatePinFields(pin); err != nil {
		return nil, err
	}
	if err := s.pins.Create(ctx, pin); err != nil {
		return nil, err
	}

	saved, err := s.pins.GetByID(ctx, pin.ID, in.UserID)
	if err != nil {
		return nil, err
	}
	if list.IsPublic {
		notifyFollowers(ctx, s.publisher, s.follows, in.UserID, notifications.Event{
			Type: notifications.EventPinSaved,
			Payload: PinSavedPayload{
				Actor:  saved.Owner.Summary(),
				PinID:  saved.ID,
				ListID: saved.ListID,
				Name:   saved.Name,
				Lat:    saved.Lat,
				Lng:    saved.Lng,
			},
			CreatedAt: saved.CreatedAt,
		})
	}
	return saved, nil
}

// GetPin hides pins of private lists from everyone but the owner.
func (s *PinService) GetPin(ctx context.Context, pinID, viewerID uint) (*models.Pin, error) {
	pin, err := s.pins.GetByID(ctx, pinID, viewerID)
	if err != nil {
		return nil, err
	}
	if !pin.List.VisibleTo(viewerID) {
		return nil, models.NewNotFoundError("Pin", pinID)
	}
	return pin, nil
}

func (s *PinService) ownedPin(ctx context.Context, userID, pinID uint) (*models.Pin, error) {
	pin, err := s.GetPin(ctx, pinID, userID)
	if err != nil {
		return nil, err
	}
	if pin.UserID != userID {
		return nil, models.NewForbiddenError("You can only modify your own pins")
	}
	return pin, nil
}

func (s *PinService) UpdatePin(ctx context.Context, in UpdatePinInput) (*models.Pin, error) {
	pin, err := s.ownedPin(ctx, in.UserID, in.PinID)
	if err != nil {
		return nil, err
	}

	if in.ListID != nil && *in.ListID != pin.ListID {
		list, err := s.targetList(ctx, in.UserID, *in.ListID)
		if err != nil {
			return nil, err
		}
		pin.ListID = list.ID
		pin.List = list
	}
	if in.Name != nil {
		pin.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		pin.Address = strings.TrimSpace(*in.Address)
	}
	if in.PlaceRef != nil {
		pin.PlaceRef = strings.TrimSpace(*in.PlaceRef)
	}
	if in.Lat != nil {
		pin.Lat = *in.Lat
	}
	if in.Lng != nil {
		pin.Lng = *in.Lng
	}
	if in.ClearRating {
		pin.Rating = nil
	} else if in.Rating != nil {
		rating := *in.Rating
		pin.Rating = &rating
	}
	if in.Note != nil {
		pin.Note = *in.Note
	}
	if in.Visited != nil {
		pin.Visited = *in.Visited
	}
	if err := validatePinFields(pin); err != nil {
		return nil, err
	}

	if err := s.pins.Update(ctx, pin); err != nil {
		return nil, err
	}
	return s.pins.GetByID(ctx, pin.ID, in.UserID)
}

func (s *PinService) DeletePin(ctx context.Context, userID, pinID uint) error {
	if _, err := s.ownedPin(ctx, userID, pinID); err != nil {
		return err
	}
	return s.pins.Delete(ctx, pinID)
}
