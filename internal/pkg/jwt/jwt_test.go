package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken("supervisor-1", RoleApprover)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotZero(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "supervisor-1", decoded.Subject())
	role, ok := decoded.Get("role")
	require.True(t, ok)
	assert.Equal(t, "approver", role)
}

func TestGenerateAccessToken_RejectsUnknownRole(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	_, _, err := svc.GenerateAccessToken("x", Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSSEToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresIn, err := svc.GenerateSSEToken("dashboard")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	subject, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", subject)
}

func TestSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, _, err := svc.GenerateAccessToken("supervisor-1", RoleAdmin)
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}
