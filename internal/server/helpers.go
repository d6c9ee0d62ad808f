package server

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"pinmap/internal/models"
	"pinmap/internal/spots"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "listId" -> "list ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// viewerID returns the authenticated profile id, or 0 for anonymous requests.
func viewerID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// parseBoundingBox reads the viewport either from bbox=minLat,minLng,maxLat,maxLng
// or from the min_lat, min_lng, max_lat and max_lng parameters. No parameters
// means the whole world.
func parseBoundingBox(c *fiber.Ctx) (spots.BoundingBox, error) {
	var raw [4]string
	if bbox := strings.TrimSpace(c.Query("bbox")); bbox != "" {
		parts := strings.Split(bbox, ",")
		if len(parts) != 4 {
			return spots.BoundingBox{}, models.NewValidationError("bbox must be minLat,minLng,maxLat,maxLng")
		}
		copy(raw[:], parts)
	} else {
		raw = [4]string{c.Query("min_lat"), c.Query("min_lng"), c.Query("max_lat"), c.Query("max_lng")}
		if raw == [4]string{} {
			return spots.BoundingBox{}, nil
		}
	}

	var vals [4]float64
	for i, r := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return spots.BoundingBox{}, models.NewValidationError("Bounding box coordinates must be numbers")
		}
		vals[i] = v
	}
	box := spots.BoundingBox{MinLat: vals[0], MinLng: vals[1], MaxLat: vals[2], MaxLng: vals[3]}
	if !box.Valid() {
		return spots.BoundingBox{}, models.NewValidationError("Invalid bounding box")
	}
	return box, nil
}
