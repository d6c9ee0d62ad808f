// Package spots aggregates saved pins into approximate real-world locations and
// ranks those locations for the map, heatmap and trending views.
//
// Everything here is a pure transformation over pins that were already fetched.
// Malformed records are filtered out, never reported as errors.
package spots

import (
	"math"
	"strconv"

	"pinmap/internal/models"
)

const (
	// DefaultPrecision is the canonical number of decimal places kept when
	// quantizing coordinates: 3 decimals is a 0.001 degree grid, roughly 100m.
	DefaultPrecision = 3
	MinPrecision     = 1
	MaxPrecision     = 6
)

// Grid quantizes coordinates into square cells of Tolerance degrees.
type Grid struct {
	precision int
	tolerance float64
}

// Cell is one quantized grid location, stored as integer multiples of the tolerance.
type Cell struct {
	Lat, Lng  int64
	precision int
}

// NewGrid returns a grid keeping precision decimals. Out-of-range values fall
// back to DefaultPrecision.
func NewGrid(precision int) Grid {
	if precision < MinPrecision || precision > MaxPrecision {
		precision = DefaultPrecision
	}
	return Grid{precision: precision, tolerance: math.Pow10(-precision)}
}

// Precision returns the number of decimals kept by the grid.
func (g Grid) Precision() int { return g.precision }

// Tolerance returns the cell size in degrees.
func (g Grid) Tolerance() float64 { return g.tolerance }

// Cell rounds lat and lng independently to the grid.
func (g Grid) Cell(lat, lng float64) Cell {
	scale := math.Pow10(g.precision)
	return Cell{
		Lat:       int64(math.Round(lat * scale)),
		Lng:       int64(math.Round(lng * scale)),
		precision: g.precision,
	}
}

// Key renders the cell as "lat,lng" with the grid's decimals, e.g. "40.730,-74.002".
func (c Cell) Key() string {
	return formatCoord(c.Lat, c.precision) + "," + formatCoord(c.Lng, c.precision)
}

// Center returns the cell's coordinates in degrees.
func (c Cell) Center() (lat, lng float64) {
	scale := math.Pow10(c.precision)
	return float64(c.Lat) / scale, float64(c.Lng) / scale
}

func formatCoord(units int64, precision int) string {
	return strconv.FormatFloat(float64(units)/math.Pow10(precision), 'f', precision, 64)
}

// ParseKey parses a key produced by Cell.Key back into a cell of g.
func (g Grid) ParseKey(key string) (Cell, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] != ',' {
			continue
		}
		lat, err := strconv.ParseFloat(key[:i], 64)
		if err != nil {
			return Cell{}, false
		}
		lng, err := strconv.ParseFloat(key[i+1:], 64)
		if err != nil {
			return Cell{}, false
		}
		if !ValidCoordinates(lat, lng) {
			return Cell{}, false
		}
		return g.Cell(lat, lng), true
	}
	return Cell{}, false
}

// Key is shorthand for g.Cell(lat, lng).Key().
func (g Grid) Key(lat, lng float64) string {
	return g.Cell(lat, lng).Key()
}

// Bucket groups pins whose rounded coordinates are equal. Pins without list
// metadata or with unusable coordinates are dropped. Pins keep their input
// order inside each bucket.
func (g Grid) Bucket(pins []*models.Pin) map[string][]*models.Pin {
	out := make(map[string][]*models.Pin)
	for _, p := range pins {
		if !Bucketable(p) {
			continue
		}
		key := g.Key(p.Lat, p.Lng)
		out[key] = append(out[key], p)
	}
	return out
}

// Bucketable reports whether p carries the list metadata and coordinates
// aggregation relies on.
func Bucketable(p *models.Pin) bool {
	if p == nil || p.ListID == 0 || p.List == nil || p.List.ID != p.ListID {
		return false
	}
	return ValidCoordinates(p.Lat, p.Lng)
}

// ValidCoordinates reports whether lat/lng are finite degrees within range.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Visible drops pins whose list is private unless viewerID owns that list.
// viewerID 0 is an anonymous viewer.
func Visible(pins []*models.Pin, viewerID uint) []*models.Pin {
	out := make([]*models.Pin, 0, len(pins))
	for _, p := range pins {
		if p == nil || p.List == nil {
			continue
		}
		if p.List.VisibleTo(viewerID) {
			out = append(out, p)
		}
	}
	return out
}

// Flatten concatenates buckets back into a pin slice, ordered by key.
func Flatten(buckets map[string][]*models.Pin) []*models.Pin {
	keys := sortedKeys(buckets)
	var out []*models.Pin
	for _, k := range keys {
		out = append(out, buckets[k]...)
	}
	return out
}
