package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Minute)

	token, err := m.GenerateAccessToken("u-1", "ama@example.com", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestManager_Rejects(t *testing.T) {
	m := NewManager("secret", time.Minute)

	t.Run("expired", func(t *testing.T) {
		token, err := NewManager("secret", time.Nanosecond).GenerateAccessToken("u-1", "", "user")
		require.NoError(t, err)
		time.Sleep(time.Second)

		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		claims := Claims{UserID: "u-1", Type: "refresh", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = m.ValidateAccessToken(token)
		assert.ErrorContains(t, err, "invalid token type")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateAccessToken("not.a.jwt")
		assert.Error(t, err)
	})
}
