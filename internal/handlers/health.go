package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthResponse reports the state of each dependency.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	UptimeSec int64             `json:"uptime_sec"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /api/health.
func Health(c *fiber.Ctx) error {
	services := make(map[string]string)
	overall := "healthy"

	db := getDBConn()
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			services["database"] = "unhealthy: " + err.Error()
			overall = "degraded"
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "not_initialized"
		overall = "degraded"
	}

	if p := getProvider(); p != nil {
		if _, loaded := p.Tables(); loaded {
			services["reference_data"] = "loaded"
		} else {
			services["reference_data"] = "not_loaded"
			overall = "degraded"
		}
	} else {
		services["reference_data"] = "not_initialized"
		overall = "degraded"
	}

	if getBudgeter() != nil {
		services["tokenizer"] = "ready"
	} else {
		services["tokenizer"] = "not_initialized"
		overall = "degraded"
	}

	status := fiber.StatusOK
	if overall != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(HealthResponse{
		Status:    overall,
		Timestamp: time.Now(),
		UptimeSec: int64(time.Since(startedAt).Seconds()),
		Services:  services,
	})
}
