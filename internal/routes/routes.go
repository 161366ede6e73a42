package routes

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/yourorg/kyotransit/internal/auth"
	"github.com/yourorg/kyotransit/internal/debug"
	"github.com/yourorg/kyotransit/internal/handlers"
	"github.com/yourorg/kyotransit/internal/middleware"
)

// Register wires the API surface onto the app.
func Register(app *fiber.App, authSvc *auth.Service) {
	app.Use(middleware.RequestLogger())

	api := app.Group("/api")

	// Health check, no rate limiting
	api.Get("/health", handlers.Health)

	// Token minting, strict limit
	api.Post("/auth/token", middleware.StrictRateLimiter(), handlers.IssueToken)

	// Protected surface
	protected := api.Group("", authSvc.Middleware(), middleware.RateLimiter())

	// Each cache miss costs a headless fetch, hence the tighter limiter.
	protected.Post("/transit/routes", middleware.SearchRateLimiter(), handlers.SearchRoutes)

	protected.Get("/stops/nearby", handlers.NearbyStops)
	protected.Get("/cache/stats", handlers.GetCacheStats)
	protected.Delete("/cache", handlers.ClearCache)

	// Debug dashboard websocket, gated by env
	if strings.EqualFold(os.Getenv("KYOTRANSIT_DEBUG_DASHBOARD"), "true") {
		app.Use("/ws/debug", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/debug", websocket.New(func(c *websocket.Conn) {
			debug.HandleWebSocketFiber(c)
		}))
	}
}
