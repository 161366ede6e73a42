package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/kyotransit/internal/models"
)

// NearbyStops handles GET /api/stops/nearby. Accepts either a place
// name (?name=清水寺) or a raw coordinate (?lat=..&lng=..), plus an
// optional ?lang= (default ja), and returns the ranked stop hints the
// search pipeline would seed a query with.
func NearbyStops(c *fiber.Ctx) error {
	s := getScraper()
	p := getProvider()
	if s == nil || p == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	lang := c.Query("lang", "ja")
	if lang != "ja" && lang != "en" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "lang must be ja or en"})
	}
	if _, err := p.Load(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "reference data unavailable"})
	}
	resolver := s.Resolver()

	if name := strings.TrimSpace(c.Query("name")); name != "" {
		coord, hints, found, err := resolver.HintsForPlace(name, lang)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "reference data unavailable"})
		}
		if !found {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "place not found"})
		}
		return c.JSON(fiber.Map{"place": name, "coord": coord, "hints": hints})
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "name or lat/lng required"})
	}
	coord := models.Coordinate{Lat: lat, Lng: lng}
	hints, err := resolver.Nearby(coord, "", "", lang)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "reference data unavailable"})
	}
	return c.JSON(fiber.Map{"coord": coord, "hints": hints})
}
