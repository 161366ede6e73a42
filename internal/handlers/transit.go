package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/kyotransit/internal/debug"
	"github.com/yourorg/kyotransit/internal/models"
)

// envelopeShape is the constant wrapper around the budgeted routes
// array. Priced with "false" because it is never shorter than "true".
const envelopeShape = `{"routes":,"truncated":false}`

// SearchRoutes handles POST /api/transit/routes. It scrapes the
// upstream search page for the requested trip, reconciles the panels
// into structured routes, and trims the reply to the caller's token
// budget.
func SearchRoutes(c *fiber.Ctx) error {
	s := getScraper()
	b := getBudgeter()
	if s == nil || b == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	var req models.TransitSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	if req.Language == "" {
		req.Language = "ja"
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = getConfig().DefaultMaxTokens
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "invalid request: " + err.Error()})
	}

	routes, err := s.Search(c.Context(), req)
	if err != nil {
		debug.LogError("route search failed", map[string]interface{}{
			"from": req.From, "to": req.To, "error": err.Error(),
		})
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{Error: "upstream search failed"})
	}
	if len(routes) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "no routes found"})
	}

	overhead, err := b.CountTokens(envelopeShape)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "token counting failed"})
	}
	budget := req.MaxTokens - overhead
	if budget < 1 {
		budget = 1
	}
	limited, truncated, err := b.Limit(routes, budget)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "response budgeting failed"})
	}

	body := fmt.Sprintf(`{"routes":%s,"truncated":%t}`, limited, truncated)
	c.Set("Content-Type", fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).SendString(body)
}
