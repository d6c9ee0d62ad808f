package service

import (
	"context"
	"log/slog"

	"pinmap/internal/middleware"
	"pinmap/internal/models"
	"pinmap/internal/notifications"
	"pinmap/internal/repository"
)

// ActivityPublisher delivers activity events to users. *notifications.Notifier
// implements it.
type ActivityPublisher interface {
	PublishEvent(ctx context.Context, recipients []uint, ev notifications.Event) error
}

// PinSavedPayload is the body of a pin_saved event.
type PinSavedPayload struct {
	Actor  models.ProfileSummary `json:"actor"`
	PinID  uint                  `json:"pin_id"`
	ListID uint                  `json:"list_id"`
	Name   string                `json:"name"`
	Lat    float64               `json:"lat"`
	Lng    float64               `json:"lng"`
}

// ListCreatedPayload is the body of a list_created event.
type ListCreatedPayload struct {
	Actor  models.ProfileSummary `json:"actor"`
	ListID uint                  `json:"list_id"`
	Name   string                `json:"name"`
	Emoji  string                `json:"emoji"`
}

// FollowedPayload is the body of a followed event.
type FollowedPayload struct {
	Actor models.ProfileSummary `json:"actor"`
}

// notifyFollowers publishes ev to every follower of actorID. Delivery is best
// effort: failures are logged and never fail the write that caused them.
func notifyFollowers(ctx context.Context, pub ActivityPublisher, follows repository.FollowRepository, actorID uint, ev notifications.Event) {
	if pub == nil || follows == nil {
		return
	}
	followers, err := follows.FollowerIDs(ctx, actorID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "load followers for activity event failed",
			slog.String("event_type", ev.Type),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := pub.PublishEvent(ctx, followers, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "publish activity event failed",
			slog.String("event_type", ev.Type),
			slog.Int("recipients", len(followers)),
			slog.String("error", err.Error()),
		)
	}
}

func notifyUser(ctx context.Context, pub ActivityPublisher, userID uint, ev notifications.Event) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, []uint{userID}, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "publish activity event failed",
			slog.String("event_type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}
