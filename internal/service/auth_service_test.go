package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-stack/flock-api/internal/models"
)

func signToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService("test-secret")
	signed := signToken(t, "test-secret", &models.JWTClaims{
		UserID: "member-1",
		Role:   models.RoleMember,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "member-1", claims.UserID)
	assert.Equal(t, models.RoleMember, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewAuthService("test-secret")
	signed := signToken(t, "other-secret", &models.JWTClaims{UserID: "member-1"})

	_, err := svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewAuthService("test-secret")
	signed := signToken(t, "test-secret", &models.JWTClaims{
		UserID: "member-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	svc := NewAuthService("test-secret")
	signed := signToken(t, "test-secret", &models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	assert.Error(t, err)
}
