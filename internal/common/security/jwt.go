package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

var ErrInvalidCredential = errors.New("invalid credential")

// TokenManager issues and verifies HS256 bearer tokens carrying a user id and
// role. It is built once from configuration and shared read-only.
type TokenManager struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenManager(secret []byte) *TokenManager {
	return &TokenManager{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  TokenTTL,
		now:  time.Now,
	}
}

func (m *TokenManager) Issue(userID, role string) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(m.ttl).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := m.auth.Encode(claims)
	return tokenString, err
}

// Verify checks signature and expiry and returns the embedded claims. Every
// failure is reported as ErrInvalidCredential.
func (m *TokenManager) Verify(tokenString string) (userID, role string, err error) {
	if tokenString == "" {
		return "", "", ErrInvalidCredential
	}
	token, err := jwtauth.VerifyToken(m.auth, tokenString)
	if err != nil || token == nil {
		return "", "", ErrInvalidCredential
	}
	raw, err := token.AsMap(context.Background())
	if err != nil {
		return "", "", ErrInvalidCredential
	}
	claims := jwt.MapClaims(raw)
	if userID, err = GetUserIDFromClaims(claims); err != nil {
		return "", "", ErrInvalidCredential
	}
	if role, err = GetUserRoleFromClaims(claims); err != nil {
		return "", "", ErrInvalidCredential
	}
	return userID, role, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
