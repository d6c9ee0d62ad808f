package spots

import (
	"sort"
	"time"

	"pinmap/internal/models"
)

// Tier is a qualitative popularity label derived from bucket statistics.
type Tier string

const (
	TierHot         Tier = "hot"
	TierTrending    Tier = "trending"
	TierRecommended Tier = "recommended"
	TierSaved       Tier = "saved"
)

const (
	hotMinSaves          = 3
	trendingMinLists     = 2
	recommendedMinRating = 4

	// RecentWindow bounds SavesThisWeek.
	RecentWindow = 7 * 24 * time.Hour
)

// Spot is one ranked location.
type Spot struct {
	Key            string      `json:"key"`
	Lat            float64     `json:"lat"`
	Lng            float64     `json:"lng"`
	Representative *models.Pin `json:"representative"`
	SaveCount      int         `json:"save_count"`
	UniqueLists    int         `json:"unique_lists"`
	UniqueSavers   int         `json:"unique_savers"`
	VisitedCount   int         `json:"visited_count"`
	AverageRating  float64     `json:"average_rating"`
	SavesThisWeek  int         `json:"saves_this_week"`
	Tier           Tier        `json:"tier"`
}

// Score computes the statistics of one bucket. asOf anchors SavesThisWeek so the
// result depends only on its arguments.
func Score(key string, bucket []*models.Pin, asOf time.Time) Spot {
	spot := Spot{Key: key, SaveCount: len(bucket)}
	if len(bucket) == 0 {
		spot.Tier = TierSaved
		return spot
	}

	lists := make(map[uint]struct{}, len(bucket))
	savers := make(map[uint]struct{}, len(bucket))
	var ratingSum, rated int
	var sumLat, sumLng float64
	since := asOf.Add(-RecentWindow)

	for _, p := range bucket {
		lists[p.ListID] = struct{}{}
		savers[p.UserID] = struct{}{}
		if p.Visited {
			spot.VisitedCount++
		}
		if r := p.RatingValue(); r > 0 {
			ratingSum += r
			rated++
		}
		if !p.CreatedAt.Before(since) && !p.CreatedAt.After(asOf) {
			spot.SavesThisWeek++
		}
		sumLat += p.Lat
		sumLng += p.Lng
		if spot.Representative == nil || betterRepresentative(p, spot.Representative) {
			spot.Representative = p
		}
	}

	spot.UniqueLists = len(lists)
	spot.UniqueSavers = len(savers)
	if rated > 0 {
		spot.AverageRating = float64(ratingSum) / float64(rated)
	}
	spot.Lat = sumLat / float64(len(bucket))
	spot.Lng = sumLng / float64(len(bucket))
	spot.Tier = classify(spot)
	return spot
}

// betterRepresentative orders by rating desc, CreatedAt desc, then id asc.
func betterRepresentative(a, b *models.Pin) bool {
	if ra, rb := a.RatingValue(), b.RatingValue(); ra != rb {
		return ra > rb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func classify(s Spot) Tier {
	switch {
	case s.SaveCount >= hotMinSaves:
		return TierHot
	case s.UniqueLists >= trendingMinLists:
		return TierTrending
	case s.Representative != nil && s.Representative.RatingValue() >= recommendedMinRating && s.Representative.Visited:
		return TierRecommended
	default:
		return TierSaved
	}
}

// Rank scores every bucket and sorts the spots for display.
func Rank(buckets map[string][]*models.Pin, asOf time.Time) []Spot {
	out := make([]Spot, 0, len(buckets))
	for key, bucket := range buckets {
		out = append(out, Score(key, bucket, asOf))
	}
	SortSpots(out)
	return out
}

// SortSpots orders spots by save count desc, representative rating desc,
// representative recency desc and finally key, which makes the order total.
func SortSpots(spots []Spot) {
	sort.SliceStable(spots, func(i, j int) bool {
		return Less(spots[i], spots[j])
	})
}

// Less reports whether a ranks ahead of b.
func Less(a, b Spot) bool {
	if a.SaveCount != b.SaveCount {
		return a.SaveCount > b.SaveCount
	}
	if ra, rb := a.Representative.RatingValue(), b.Representative.RatingValue(); ra != rb {
		return ra > rb
	}
	ta, tb := representativeTime(a), representativeTime(b)
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return a.Key < b.Key
}

func representativeTime(s Spot) time.Time {
	if s.Representative == nil {
		return time.Time{}
	}
	return s.Representative.CreatedAt
}

// Positions maps each bucket key to its index in ranked.
func Positions(ranked []Spot) map[string]int {
	out := make(map[string]int, len(ranked))
	for i, s := range ranked {
		out[s.Key] = i
	}
	return out
}

func sortedKeys(buckets map[string][]*models.Pin) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
