package feed

import (
	"time"

	"pinmap/internal/models"
	"pinmap/internal/spots"
)

// popularLess ranks pin entries by the position of their location in the
// trend ranking and list entries by likes. Both are compared on a shared
// weight (bucket save count or like count) before falling back to recency.
func popularLess(entries []Entry, grid spots.Grid, asOf time.Time) func(a, b Entry) bool {
	if grid.Precision() == 0 {
		grid = spots.NewGrid(spots.DefaultPrecision)
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	pins := make([]*models.Pin, 0, len(entries))
	for _, e := range entries {
		if e.Kind == KindPinSaved && e.Pin != nil {
			pins = append(pins, e.Pin)
		}
	}
	buckets := grid.Bucket(pins)
	ranked := spots.Rank(buckets, asOf)
	position := spots.Positions(ranked)
	saves := make(map[string]int, len(ranked))
	for _, s := range ranked {
		saves[s.Key] = s.SaveCount
	}

	type score struct {
		weight   int
		position int
	}
	scoreOf := func(e Entry) score {
		if e.Kind == KindPinSaved && e.Pin != nil {
			key := grid.Key(e.Pin.Lat, e.Pin.Lng)
			if pos, ok := position[key]; ok {
				return score{weight: saves[key], position: pos}
			}
			return score{position: len(ranked)}
		}
		if e.List != nil {
			return score{weight: e.List.LikesCount, position: len(ranked)}
		}
		return score{position: len(ranked)}
	}

	return func(a, b Entry) bool {
		sa, sb := scoreOf(a), scoreOf(b)
		if sa.weight != sb.weight {
			return sa.weight > sb.weight
		}
		if sa.position != sb.position {
			return sa.position < sb.position
		}
		return lessRecent(a, b)
	}
}
