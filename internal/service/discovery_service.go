package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pinmap/internal/cache"
	"pinmap/internal/config"
	"pinmap/internal/middleware"
	"pinmap/internal/models"
	"pinmap/internal/observability"
	"pinmap/internal/repository"
	"pinmap/internal/spots"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultTrendingTTL   = time.Minute
	defaultTrendingLimit = 10
	maxTrendingLimit     = 50
	maxSpotsLimit        = 500
)

// DiscoveryService serves the aggregate map views: ranked spots, trending,
// heatmap and the pins behind one spot.
type DiscoveryService struct {
	pins        repository.PinRepository
	grid        spots.Grid
	trendingTTL time.Duration
	now         func() time.Time
}

type SpotsQuery struct {
	ViewerID uint
	Box      spots.BoundingBox
	Limit    int
}

// SpotDetail is one spot with every visible pin saved there.
type SpotDetail struct {
	Spot spots.Spot    `json:"spot"`
	Pins []*models.Pin `json:"pins"`
}

func NewDiscoveryService(pins repository.PinRepository, cfg *config.Config) *DiscoveryService {
	precision := spots.DefaultPrecision
	ttl := defaultTrendingTTL
	if cfg != nil {
		if cfg.BucketPrecision > 0 {
			precision = cfg.BucketPrecision
		}
		if cfg.TrendingCacheSeconds > 0 {
			ttl = time.Duration(cfg.TrendingCacheSeconds) * time.Second
		}
	}
	return &DiscoveryService{
		pins:        pins,
		grid:        spots.NewGrid(precision),
		trendingTTL: ttl,
		now:         time.Now,
	}
}

// Grid exposes the bucketing grid in use.
func (s *DiscoveryService) Grid() spots.Grid {
	return s.grid
}

// fetchFailed logs a data fetch failure that is surfaced as an empty view.
func (s *DiscoveryService) fetchFailed(ctx context.Context, view string, err error) {
	observability.FetchFailures.WithLabelValues(view).Inc()
	middleware.Logger.ErrorContext(ctx, "aggregate fetch failed",
		slog.String("view", view),
		slog.String("error", err.Error()),
	)
}

func (s *DiscoveryService) rank(pins []*models.Pin, viewerID uint, limit int) []spots.Spot {
	visible := spots.Visible(pins, viewerID)
	observability.PinsBucketed.Observe(float64(len(visible)))
	ranked := spots.Rank(s.grid.Bucket(visible), s.now())
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Spots buckets and ranks the pins visible to the viewer inside the box.
func (s *DiscoveryService) Spots(ctx context.Context, q SpotsQuery) ([]spots.Spot, error) {
	if !q.Box.Valid() {
		return nil, models.NewValidationError("Invalid bounding box")
	}
	limit := q.Limit
	if limit <= 0 || limit > maxSpotsLimit {
		limit = maxSpotsLimit
	}

	ctx, span := observability.StartSpan(ctx, "discovery", "spots",
		attribute.Bool("bbox", !q.Box.IsZero()),
		attribute.Int("limit", limit),
	)
	defer span.End()

	pins, err := s.pins.VisiblePins(ctx, repository.PinQuery{ViewerID: q.ViewerID, Box: q.Box})
	if err != nil {
		span.RecordError(err)
		s.fetchFailed(ctx, "spots", err)
		return []spots.Spot{}, nil
	}

	ranked := s.rank(pins, q.ViewerID, limit)
	span.SetAttributes(attribute.Int("pins", len(pins)), attribute.Int("spots", len(ranked)))
	observability.SpotsAggregated.WithLabelValues("spots").Add(float64(len(ranked)))
	return ranked, nil
}

// Trending returns the top public spots. Results are cached per grid
// precision and limit; pin and list writes invalidate them.
func (s *DiscoveryService) Trending(ctx context.Context, limit int) ([]spots.Spot, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}

	ctx, span := observability.StartSpan(ctx, "discovery", "trending", attribute.Int("limit", limit))
	defer span.End()

	var ranked []spots.Spot
	err := cache.Aside(ctx, cache.TrendingKey(s.grid.Precision(), limit), &ranked, s.trendingTTL, func() error {
		pins, err := s.pins.VisiblePins(ctx, repository.PinQuery{})
		if err != nil {
			return err
		}
		ranked = s.rank(pins, 0, limit)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		s.fetchFailed(ctx, "trending", err)
		return []spots.Spot{}, nil
	}
	if ranked == nil {
		ranked = []spots.Spot{}
	}
	observability.SpotsAggregated.WithLabelValues("trending").Add(float64(len(ranked)))
	return ranked, nil
}

// Heatmap returns weighted cells of public pins inside the box.
func (s *DiscoveryService) Heatmap(ctx context.Context, box spots.BoundingBox) ([]spots.HeatCell, error) {
	if !box.Valid() {
		return nil, models.NewValidationError("Invalid bounding box")
	}

	ctx, span := observability.StartSpan(ctx, "discovery", "heatmap")
	defer span.End()

	var cells []spots.HeatCell
	err := cache.Aside(ctx, cache.HeatmapKey(s.grid.Precision(), boxKey(box)), &cells, cache.HeatmapTTL, func() error {
		pins, err := s.pins.VisiblePins(ctx, repository.PinQuery{Box: box})
		if err != nil {
			return err
		}
		cells = spots.Heatmap(s.grid, spots.Visible(pins, 0))
		return nil
	})
	if err != nil {
		span.RecordError(err)
		s.fetchFailed(ctx, "heatmap", err)
		return []spots.HeatCell{}, nil
	}
	if cells == nil {
		cells = []spots.HeatCell{}
	}
	observability.SpotsAggregated.WithLabelValues("heatmap").Add(float64(len(cells)))
	return cells, nil
}

// SpotPins returns the spot identified by key together with the pins in it
// that the viewer may see.
func (s *DiscoveryService) SpotPins(ctx context.Context, key string, viewerID uint) (*SpotDetail, error) {
	cell, ok := s.grid.ParseKey(key)
	if !ok {
		return nil, models.NewValidationError("Invalid spot key")
	}
	key = cell.Key()

	ctx, span := observability.StartSpan(ctx, "discovery", "spot_pins", attribute.String("spot", key))
	defer span.End()

	// Query a box a little larger than the cell; bucketing below decides
	// membership exactly.
	box := s.grid.CellBox(cell)
	margin := s.grid.Tolerance() / 2
	box.MinLat -= margin
	box.MinLng -= margin
	box.MaxLat += margin
	box.MaxLng += margin

	pins, err := s.pins.VisiblePins(ctx, repository.PinQuery{ViewerID: viewerID, Box: box})
	if err != nil {
		span.RecordError(err)
		s.fetchFailed(ctx, "spot_pins", err)
		return &SpotDetail{Spot: spots.Score(key, nil, s.now()), Pins: []*models.Pin{}}, nil
	}

	bucket := s.grid.Bucket(spots.Visible(pins, viewerID))[key]
	if len(bucket) == 0 {
		return nil, models.NewNotFoundError("Spot", key)
	}
	return &SpotDetail{Spot: spots.Score(key, bucket, s.now()), Pins: bucket}, nil
}

func boxKey(b spots.BoundingBox) string {
	if b.IsZero() {
		return "world"
	}
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", b.MinLat, b.MinLng, b.MaxLat, b.MaxLng)
}
