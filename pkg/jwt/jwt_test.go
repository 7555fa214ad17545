package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "test-access-secret-key-for-testing-purposes"
	testRefreshSecret = "test-refresh-secret-key-for-testing-purposes"
)

func newTestService() *Service {
	return NewService(testAccessSecret, testRefreshSecret, time.Hour, 24*time.Hour)
}

func TestGenerateAccessToken(t *testing.T) {
	service := newTestService()
	empID := int64(42)
	sub := Subject{UserID: 7, Username: "petrenko_i", Role: "employee", EmployeeID: &empID}

	token, err := service.GenerateAccessToken(sub)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "petrenko_i", claims.Username)
	assert.Equal(t, "employee", claims.Role)
	require.NotNil(t, claims.EmployeeID)
	assert.Equal(t, empID, *claims.EmployeeID)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestGenerateRefreshToken(t *testing.T) {
	service := newTestService()
	sub := Subject{UserID: 3, Username: "hr"}

	first, err := service.GenerateRefreshToken(sub)
	require.NoError(t, err)
	second, err := service.GenerateRefreshToken(sub)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	claims, err := service.ValidateRefreshToken(first)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.UserID)
	assert.Equal(t, RefreshToken, claims.TokenType)
	assert.Empty(t, claims.Role)
}

func TestTokenTypeMismatch(t *testing.T) {
	service := NewService("same-secret", "same-secret", time.Hour, time.Hour)
	sub := Subject{UserID: 1, Username: "admin", Role: "admin"}

	access, err := service.GenerateAccessToken(sub)
	require.NoError(t, err)
	_, err = service.ValidateRefreshToken(access)
	assert.ErrorContains(t, err, "invalid token type")

	refresh, err := service.GenerateRefreshToken(sub)
	require.NoError(t, err)
	_, err = service.ValidateAccessToken(refresh)
	assert.ErrorContains(t, err, "invalid token type")
}

func TestWrongSecret(t *testing.T) {
	token, err := newTestService().GenerateAccessToken(Subject{UserID: 1})
	require.NoError(t, err)

	other := NewService("another-secret", testRefreshSecret, time.Hour, time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	service := NewService(testAccessSecret, testRefreshSecret, -time.Minute, time.Hour)
	token, err := service.GenerateAccessToken(Subject{UserID: 1})
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenSigningMethod(t *testing.T) {
	claims := Claims{
		UserID:    1,
		TokenType: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService().ValidateAccessToken(raw)
	assert.Error(t, err)
}
