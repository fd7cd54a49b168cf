package jwtutil

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/kennethjason07/schoolmangmentsystem-sub005/pkg/config"
)

// UserClaims are the claims the external auth service puts in its tokens.
// TenantID carries the tenant context selected at login.
type UserClaims struct {
	Email      string  `json:"email"`
	UserID     string  `json:"user_id"`
	TenantID   *string `json:"tenant_id,omitempty"`
	TenantName string  `json:"tenant_name,omitempty"`
	Role       string  `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var signingKey []byte

// Initialize stores the shared signing key. Token issuance happens in the
// external auth service; this package only validates.
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
}

// ValidateToken validates and parses a JWT token string.
func ValidateToken(tokenString string) (*UserClaims, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return signingKey, nil
		},
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
