// Package token signs and verifies the bearer tokens that carry a
// user's identity and role between requests.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/model"
)

type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

func Sign(secret string, ttl time.Duration, userID string, role model.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify parses the token and yields the identity it asserts.
func Verify(secret, tokenString string) (userID string, role model.Role, err error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !parsed.Valid {
		return "", "", apperr.Unauthenticated("invalid or expired token")
	}

	return claims.Subject, claims.Role, nil
}
