package service

import (
	"context"

	"pinmap/internal/models"
	"pinmap/internal/notifications"
	"pinmap/internal/repository"
)

// FollowService manages the one-way follow graph.
type FollowService struct {
	follows   repository.FollowRepository
	profiles  repository.ProfileRepository
	publisher ActivityPublisher
}

// NewFollowService returns a new FollowService.
func NewFollowService(follows repository.FollowRepository, profiles repository.ProfileRepository, publisher ActivityPublisher) *FollowService {
	return &FollowService{follows: follows, profiles: profiles, publisher: publisher}
}

// Follow makes followerID follow followeeID. Following twice is not an error.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.profiles.GetByID(ctx, followeeID); err != nil {
		return err
	}

	created, err := s.follows.Follow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if created && s.publisher != nil {
		follower, err := s.profiles.GetByID(ctx, followerID)
		if err != nil {
			return nil
		}
		notifyUser(ctx, s.publisher, followeeID, notifications.Event{
			Type:    notifications.EventFollowed,
			Payload: FollowedPayload{Actor: follower.Summary()},
		})
	}
	return nil
}

// Unfollow removes the edge. Unfollowing someone you do not follow is not an error.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	_, err := s.follows.Unfollow(ctx, followerID, followeeID)
	return err
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	if followerID == 0 || followerID == followeeID {
		return false, nil
	}
	return s.follows.IsFollowing(ctx, followerID, followeeID)
}

// Followers lists the profiles following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]*models.Profile, error) {
	if _, err := s.profiles.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID, limit, offset)
}

// Following lists the profiles userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]*models.Profile, error) {
	if _, err := s.profiles.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID, limit, offset)
}
