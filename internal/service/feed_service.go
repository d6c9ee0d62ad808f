package service

import (
	"context"
	"log/slog"
	"time"

	"pinmap/internal/config"
	"pinmap/internal/featureflags"
	"pinmap/internal/feed"
	"pinmap/internal/middleware"
	"pinmap/internal/models"
	"pinmap/internal/observability"
	"pinmap/internal/repository"
	"pinmap/internal/spots"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFeedMaxItems = 200
	defaultFeedPage     = 20
	maxFeedPage         = 100
	likedListsFetch     = 100
)

// FeedService gathers the composer's inputs concurrently and pages the result.
type FeedService struct {
	lists    repository.ListRepository
	pins     repository.PinRepository
	follows  repository.FollowRepository
	profiles repository.ProfileRepository
	grid     spots.Grid
	maxItems int
	flags    *featureflags.Manager
	now      func() time.Time
}

type FeedQuery struct {
	ViewerID uint
	Order    feed.Order
	Limit    int
	Offset   int
}

// FeedPage is one page of the composed feed. Personal and Followed are the
// page's entries split by source.
type FeedPage struct {
	Order    feed.Order   `json:"order"`
	Entries  []feed.Entry `json:"entries"`
	Personal []feed.Entry `json:"personal"`
	Followed []feed.Entry `json:"followed"`
	Total    int          `json:"total"`
	HasMore  bool         `json:"has_more"`
}

func NewFeedService(
	lists repository.ListRepository,
	pins repository.PinRepository,
	follows repository.FollowRepository,
	profiles repository.ProfileRepository,
	cfg *config.Config,
) *FeedService {
	precision := spots.DefaultPrecision
	maxItems := defaultFeedMaxItems
	var flags *featureflags.Manager
	if cfg != nil {
		flags = featureflags.NewManager(cfg.FeatureFlags)
		if cfg.BucketPrecision > 0 {
			precision = cfg.BucketPrecision
		}
		if cfg.FeedMaxItems > 0 {
			maxItems = cfg.FeedMaxItems
		}
	}
	return &FeedService{
		lists:    lists,
		pins:     pins,
		follows:  follows,
		profiles: profiles,
		grid:     spots.NewGrid(precision),
		maxItems: maxItems,
		flags:    flags,
		now:      time.Now,
	}
}

// degrade logs a failed feed source; the source contributes nothing.
func degrade(ctx context.Context, source string, err error) {
	observability.FetchFailures.WithLabelValues("feed_" + source).Inc()
	middleware.Logger.ErrorContext(ctx, "feed source fetch failed",
		slog.String("source", source),
		slog.String("error", err.Error()),
	)
}

// gather fetches every composer input. Sources fail independently.
func (s *FeedService) gather(ctx context.Context, viewerID uint) feed.Input {
	in := feed.Input{ViewerID: viewerID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lists, err := s.lists.ListByOwner(gctx, viewerID, viewerID, true)
		if err != nil {
			degrade(gctx, "own_lists", err)
			return nil
		}
		in.OwnLists = lists
		return nil
	})
	g.Go(func() error {
		pins, err := s.pins.ListByOwner(gctx, viewerID, s.maxItems)
		if err != nil {
			degrade(gctx, "own_pins", err)
			return nil
		}
		in.OwnPins = pins
		return nil
	})
	g.Go(func() error {
		ids, err := s.follows.FolloweeIDs(gctx, viewerID)
		if err != nil {
			degrade(gctx, "following", err)
			return nil
		}
		in.Following = ids
		return nil
	})
	g.Go(func() error {
		liked, err := s.lists.LikedBy(gctx, viewerID, likedListsFetch)
		if err != nil {
			degrade(gctx, "liked_lists", err)
			return nil
		}
		in.LikedLists = liked
		return nil
	})
	_ = g.Wait()

	profileIDs := append([]uint{viewerID}, in.Following...)
	var profiles []*models.Profile

	g, gctx = errgroup.WithContext(ctx)
	if len(in.Following) > 0 {
		g.Go(func() error {
			lists, err := s.lists.ListPublicByOwners(gctx, in.Following, viewerID, s.maxItems)
			if err != nil {
				degrade(gctx, "followed_lists", err)
				return nil
			}
			in.FollowedLists = lists
			return nil
		})
		g.Go(func() error {
			pins, err := s.pins.ListPublicByOwners(gctx, in.Following, viewerID, s.maxItems)
			if err != nil {
				degrade(gctx, "followed_pins", err)
				return nil
			}
			in.FollowedPins = pins
			return nil
		})
	}
	g.Go(func() error {
		found, err := s.profiles.GetByIDs(gctx, profileIDs)
		if err != nil {
			degrade(gctx, "profiles", err)
			return nil
		}
		profiles = found
		return nil
	})
	_ = g.Wait()

	in.Profiles = make(map[uint]*models.Profile, len(profiles))
	for _, p := range profiles {
		in.Profiles[p.ID] = p
	}
	return in
}

// Feed composes the viewer's feed and returns the requested page.
func (s *FeedService) Feed(ctx context.Context, q FeedQuery) (*FeedPage, error) {
	if q.ViewerID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	order := q.Order
	if order != feed.OrderPopular || !s.flags.Enabled(featureflags.PopularFeed, q.ViewerID) {
		order = feed.OrderRecent
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultFeedPage
	}
	if limit > maxFeedPage {
		limit = maxFeedPage
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	ctx, span := observability.StartSpan(ctx, "feed", "compose",
		attribute.String("order", string(order)),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)
	defer span.End()

	in := s.gather(ctx, q.ViewerID)
	in.Order = order
	in.Grid = s.grid
	in.AsOf = s.now()

	composed := feed.Compose(in)
	entries := composed.Entries
	if len(entries) > s.maxItems {
		entries = entries[:s.maxItems]
	}

	page := &FeedPage{
		Order:    order,
		Entries:  []feed.Entry{},
		Personal: []feed.Entry{},
		Followed: []feed.Entry{},
		Total:    len(entries),
	}
	if offset < len(entries) {
		end := offset + limit
		if end > len(entries) {
			end = len(entries)
		}
		page.Entries = entries[offset:end]
		page.HasMore = end < len(entries)
	}
	for _, e := range page.Entries {
		switch e.Source {
		case feed.SourceOwn:
			page.Personal = append(page.Personal, e)
		case feed.SourceFollowed:
			page.Followed = append(page.Followed, e)
		}
	}

	span.SetAttributes(attribute.Int("entries", len(page.Entries)), attribute.Int("total", page.Total))
	observability.FeedEntriesComposed.WithLabelValues(string(order)).Add(float64(len(page.Entries)))
	return page, nil
}

// Flags is the rollout configuration the feed is evaluated with.
func (s *FeedService) Flags() *featureflags.Manager {
	return s.flags
}

// FollowingGroups returns each followee with their public lists, most recently
// followed first. Followees without public lists are omitted.
// Unlike Feed, both fetches are required here, so a failure is returned.
func (s *FeedService) FollowingGroups(ctx context.Context, viewerID uint) ([]feed.Group, error) {
	followees, err := s.follows.Following(ctx, viewerID, maxFeedPage, 0)
	if err != nil {
		return nil, err
	}
	if len(followees) == 0 {
		return []feed.Group{}, nil
	}
	ids := make([]uint, len(followees))
	for i, p := range followees {
		ids[i] = p.ID
	}
	lists, err := s.lists.ListPublicByOwners(ctx, ids, viewerID, s.maxItems)
	if err != nil {
		return nil, err
	}
	return feed.GroupByActor(followees, lists), nil
}
