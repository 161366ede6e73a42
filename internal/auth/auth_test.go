package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyToken(t *testing.T) {
	svc := NewService("0123456789abcdef0123456789abcdef", "test-api-key")

	token, expires, err := svc.IssueToken("test-api-key", "itinerary-bot")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expires.After(time.Now()))

	client, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "itinerary-bot", client)
}

func TestIssueTokenRejectsWrongKey(t *testing.T) {
	svc := NewService("0123456789abcdef0123456789abcdef", "test-api-key")

	_, _, err := svc.IssueToken("wrong-key", "itinerary-bot")
	assert.Error(t, err)
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	issuer := NewService("0123456789abcdef0123456789abcdef", "test-api-key")
	other := NewService("fedcba9876543210fedcba9876543210", "test-api-key")

	token, _, err := issuer.IssueToken("test-api-key", "itinerary-bot")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService("0123456789abcdef0123456789abcdef", "test-api-key")

	_, err := svc.Verify("not.a.jwt")
	assert.Error(t, err)
}
