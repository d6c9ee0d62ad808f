package spots

import (
	"sort"

	"pinmap/internal/models"
)

// HeatCell is one weighted cell of the heat layer.
type HeatCell struct {
	Key    string  `json:"key"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight int     `json:"weight"`
}

// Heatmap counts saves per grid cell. Cells are ordered by weight desc, then key.
func Heatmap(g Grid, pins []*models.Pin) []HeatCell {
	cells := make(map[string]*HeatCell)
	for _, p := range pins {
		if !Bucketable(p) {
			continue
		}
		cell := g.Cell(p.Lat, p.Lng)
		key := cell.Key()
		hc, ok := cells[key]
		if !ok {
			lat, lng := cell.Center()
			hc = &HeatCell{Key: key, Lat: lat, Lng: lng}
			cells[key] = hc
		}
		hc.Weight++
	}

	out := make([]HeatCell, 0, len(cells))
	for _, hc := range cells {
		out = append(out, *hc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// BoundingBox limits an aggregate query to a rectangle. The zero value means
// the whole map.
type BoundingBox struct {
	MinLat, MinLng, MaxLat, MaxLng float64
}

// IsZero reports whether b is unset.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Valid reports whether b describes a usable rectangle.
func (b BoundingBox) Valid() bool {
	if b.IsZero() {
		return true
	}
	return ValidCoordinates(b.MinLat, b.MinLng) && ValidCoordinates(b.MaxLat, b.MaxLng) &&
		b.MinLat <= b.MaxLat && b.MinLng <= b.MaxLng
}

// Contains reports whether the point is inside b (edges included).
func (b BoundingBox) Contains(lat, lng float64) bool {
	if b.IsZero() {
		return true
	}
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// CellBox returns the rectangle covered by the cell with the given key.
func (g Grid) CellBox(c Cell) BoundingBox {
	lat, lng := c.Center()
	half := g.tolerance / 2
	return BoundingBox{MinLat: lat - half, MinLng: lng - half, MaxLat: lat + half, MaxLng: lng + half}
}
