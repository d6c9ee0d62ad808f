package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix  = "profile:%d"
	SubjectKeyPrefix  = "subject:%s"
	TrendingKeyPrefix = "trending:"
	HeatmapKeyPrefix  = "heatmap:"
)

const (
	ProfileTTL = 5 * time.Minute
	SubjectTTL = 30 * time.Minute
	HeatmapTTL = 2 * time.Minute
)

func ProfileKey(profileID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, profileID)
}

// SubjectKey maps an identity-provider subject to a profile id.
func SubjectKey(subject string) string {
	return fmt.Sprintf(SubjectKeyPrefix, subject)
}

func TrendingKey(precision, limit int) string {
	return fmt.Sprintf("%sp%d:n%d", TrendingKeyPrefix, precision, limit)
}

func HeatmapKey(precision int, bbox string) string {
	return fmt.Sprintf("%sp%d:%s", HeatmapKeyPrefix, precision, bbox)
}

func InvalidateProfile(ctx context.Context, profileID uint) {
	Invalidate(ctx, ProfileKey(profileID))
}

// InvalidateAggregates drops every cached trending and heatmap result. Any pin
// or list visibility change can move them.
func InvalidateAggregates(ctx context.Context) {
	InvalidatePrefix(ctx, TrendingKeyPrefix)
	InvalidatePrefix(ctx, HeatmapKeyPrefix)
}
