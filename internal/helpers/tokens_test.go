package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := NewAccessToken("test-secret", "user-123", "vendor", "v@example.com", "Asha", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "vendor", claims.Role)
	assert.Equal(t, "v@example.com", claims.Email)
	assert.Equal(t, "Asha", claims.Name)
}

func TestValidateTokenRejections(t *testing.T) {
	token, err := NewAccessToken("secret-a", "user-123", "customer", "c@example.com", "", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("secret-b", token)
	assert.Error(t, err, "wrong secret must be rejected")

	expired, err := NewAccessToken("secret-a", "user-123", "customer", "c@example.com", "", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken("secret-a", expired)
	assert.Error(t, err, "expired token must be rejected")

	_, err = ValidateToken("secret-a", "not.a.token")
	assert.Error(t, err)
}

func TestSessionChecks(t *testing.T) {
	s := &Session{UserID: "u1", Role: "vendor"}
	assert.True(t, s.IsVendor())
	assert.False(t, s.IsAdmin())
	assert.True(t, s.IsOwner("u1"))
	assert.False(t, s.IsOwner("u2"))
}
