package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yourorg/kyotransit/internal/models"
)

var tokenTTL = 24 * time.Hour

// Service mints and verifies the bearer tokens that guard the API.
// Clients exchange the shared API key for a short-lived JWT.
type Service struct {
	secret []byte
	apiKey string
}

func NewService(secret, apiKey string) *Service {
	return &Service{secret: []byte(secret), apiKey: apiKey}
}

type clientClaims struct {
	ClientName string `json:"client_name"`
	jwt.RegisteredClaims
}

// IssueToken validates the presented API key and signs a JWT for it.
func (s *Service) IssueToken(apiKey, clientName string) (string, time.Time, error) {
	if apiKey != s.apiKey {
		return "", time.Time{}, errors.New("invalid api key")
	}
	now := time.Now()
	expires := now.Add(tokenTTL)
	claims := clientClaims{
		ClientName: clientName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expires, err
}

// Verify parses a signed token and returns the client name it was
// minted for.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &clientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.ClientName, nil
}

// Middleware rejects requests without a valid bearer token.
func (s *Service) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "missing bearer token"})
		}
		client, err := s.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid token"})
		}
		c.Locals("client_name", client)
		return c.Next()
	}
}
