package service

import (
	"context"

	"pinmap/internal/models"
	"pinmap/internal/repository"
)

// LikeService handles likes on lists and pins. A user cannot like their own
// content or content they cannot see.
type LikeService struct {
	likes repository.LikeRepository
	lists repository.ListRepository
	pins  repository.PinRepository
}

// NewLikeService returns a new LikeService.
func NewLikeService(likes repository.LikeRepository, lists repository.ListRepository, pins repository.PinRepository) *LikeService {
	return &LikeService{likes: likes, lists: lists, pins: pins}
}

func (s *LikeService) likeableList(ctx context.Context, userID, listID uint) error {
	list, err := s.lists.GetByID(ctx, listID, userID)
	if err != nil {
		return err
	}
	if !list.VisibleTo(userID) {
		return models.NewNotFoundError("List", listID)
	}
	if list.UserID == userID {
		return models.NewValidationError("You cannot like your own list")
	}
	return nil
}

func (s *LikeService) likeablePin(ctx context.Context, userID, pinID uint) error {
	pin, err := s.pins.GetByID(ctx, pinID, userID)
	if err != nil {
		return err
	}
	if !pin.List.VisibleTo(userID) {
		return models.NewNotFoundError("Pin", pinID)
	}
	if pin.UserID == userID {
		return models.NewValidationError("You cannot like your own pin")
	}
	return nil
}

// LikeList likes the list and returns it with fresh counts.
func (s *LikeService) LikeList(ctx context.Context, userID, listID uint) (*models.List, error) {
	if err := s.likeableList(ctx, userID, listID); err != nil {
		return nil, err
	}
	if _, err := s.likes.LikeList(ctx, userID, listID); err != nil {
		return nil, err
	}
	return s.lists.GetByID(ctx, listID, userID)
}

func (s *LikeService) UnlikeList(ctx context.Context, userID, listID uint) (*models.List, error) {
	list, err := s.lists.GetByID(ctx, listID, userID)
	if err != nil {
		return nil, err
	}
	if !list.VisibleTo(userID) {
		return nil, models.NewNotFoundError("List", listID)
	}
	if _, err := s.likes.UnlikeList(ctx, userID, listID); err != nil {
		return nil, err
	}
	return s.lists.GetByID(ctx, listID, userID)
}

// LikePin likes the pin and returns it with fresh counts.
func (s *LikeService) LikePin(ctx context.Context, userID, pinID uint) (*models.Pin, error) {
	if err := s.likeablePin(ctx, userID, pinID); err != nil {
		return nil, err
	}
	if _, err := s.likes.LikePin(ctx, userID, pinID); err != nil {
		return nil, err
	}
	return s.pins.GetByID(ctx, pinID, userID)
}

func (s *LikeService) UnlikePin(ctx context.Context, userID, pinID uint) (*models.Pin, error) {
	pin, err := s.pins.GetByID(ctx, pinID, userID)
	if err != nil {
		return nil, err
	}
	if !pin.List.VisibleTo(userID) {
		return nil, models.NewNotFoundError("Pin", pinID)
	}
	if _, err := s.likes.UnlikePin(ctx, userID, pinID); err != nil {
		return nil, err
	}
	return s.pins.GetByID(ctx, pinID, userID)
}
