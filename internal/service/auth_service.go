package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

// AuthService verifies access tokens issued by the identity platform. Login,
// refresh and password flows live there, not here; this service only needs to
// establish who is calling.
type AuthService struct {
	secret []byte
}

// NewAuthService constructs the verifier with the shared HMAC secret.
func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret)}
}

// ValidateToken parses and verifies an access token, returning its claims.
func (s *AuthService) ValidateToken(token string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing subject")
	}
	return claims, nil
}
