package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/kyotransit/internal/models"
)

type tokenRequest struct {
	APIKey     string `json:"api_key"`
	ClientName string `json:"client_name"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken handles POST /api/auth/token: shared API key in, JWT out.
func IssueToken(c *fiber.Ctx) error {
	svc := getAuthService()
	if svc == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.APIKey == "" || req.ClientName == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "api_key and client_name required"})
	}

	token, expiresAt, err := svc.IssueToken(req.APIKey, req.ClientName)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid credentials"})
	}
	c.Set("Cache-Control", "no-store")
	return c.JSON(tokenResponse{Token: token, ExpiresAt: expiresAt})
}
