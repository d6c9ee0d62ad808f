package server

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"pinmap/internal/spots"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=0", 20, 0},
		{"?limit=1000", maxPaginationLimit, 0},
		{"?offset=-3", 20, 0},
		{"?limit=abc", 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePagination(c, 20)
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "list ID", humanizeParam("listId"))
	assert.Equal(t, "pin list ID", humanizeParam("pinListId"))
	assert.Equal(t, "key", humanizeParam("key"))
}

func TestParseBoundingBox(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    spots.BoundingBox
		wantErr bool
	}{
		{"world", "", spots.BoundingBox{}, false},
		{"four params", "?min_lat=1&min_lng=2&max_lat=3&max_lng=4", spots.BoundingBox{MinLat: 1, MinLng: 2, MaxLat: 3, MaxLng: 4}, false},
		{"bbox", "?bbox=-1.5,2,3,4.25", spots.BoundingBox{MinLat: -1.5, MinLng: 2, MaxLat: 3, MaxLng: 4.25}, false},
		{"partial params", "?min_lat=1", spots.BoundingBox{}, true},
		{"short bbox", "?bbox=1,2", spots.BoundingBox{}, true},
		{"inverted", "?bbox=3,2,1,4", spots.BoundingBox{}, true},
		{"out of range", "?bbox=0,0,1,200", spots.BoundingBox{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got spots.BoundingBox
			var gotErr error
			app.Get("/", func(c *fiber.Ctx) error {
				got, gotErr = parseBoundingBox(c)
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			if tt.wantErr {
				assert.Error(t, gotErr)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}
