// Package auth issues and verifies JWT access tokens and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mkamalov/bazar/config"
)

// TokenTTL is the lifetime of an access token.
const TokenTTL = 72 * time.Hour

var (
	ErrInvalidToken = errors.New("auth: invalid or expired token")
)

// Claims is the JWT payload carried by every authenticated request.
// SellerID is set only for users with an approved seller profile.
type Claims struct {
	UserID   uint   `json:"uid"`
	Role     string `json:"role"`
	SellerID *uint  `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for the given identity.
func GenerateToken(userID uint, role string, sellerID *uint) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Role:     role,
		SellerID: sellerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bazar",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret()))
}

// ValidateToken parses and verifies a signed token string.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(config.JWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshToken re-issues a token with a fresh expiry if the old one is still
// valid and past half its lifetime.
func RefreshToken(tokenString string) (string, error) {
	claims, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	if time.Until(claims.ExpiresAt.Time) > TokenTTL/2 {
		return tokenString, nil
	}
	return GenerateToken(claims.UserID, claims.Role, claims.SellerID)
}
