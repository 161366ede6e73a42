package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/kyotransit/internal/cache"
	"github.com/yourorg/kyotransit/internal/models"
)

// GetCacheStats handles GET /api/cache/stats.
func GetCacheStats(c *fiber.Ctx) error {
	stats := cache.GetAllCacheStats()

	var totalItems, totalValid, totalExpired int
	for _, s := range stats {
		totalItems += s.TotalItems
		totalValid += s.ValidItems
		totalExpired += s.ExpiredItems
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"summary": fiber.Map{
			"total_items":   totalItems,
			"valid_items":   totalValid,
			"expired_items": totalExpired,
		},
		"caches": stats,
	})
}

// ClearCache handles DELETE /api/cache?type=pages|hints|all.
func ClearCache(c *fiber.Ctx) error {
	cacheType := c.Query("type", "all")

	cleared := 0
	switch cacheType {
	case "pages":
		if cache.PageCache != nil {
			cache.PageCache.Clear()
			cleared = 1
		}
	case "hints":
		if cache.HintCache != nil {
			cache.HintCache.Clear()
			cleared = 1
		}
	case "all":
		for _, cc := range []*cache.Cache{cache.PageCache, cache.HintCache} {
			if cc != nil {
				cc.Clear()
				cleared++
			}
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid cache type, use pages, hints, or all"})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "cache cleared",
		"type":    cacheType,
		"cleared": cleared,
	})
}
