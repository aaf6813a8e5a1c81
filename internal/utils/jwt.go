package utils

import (
	"fmt"

	"clinic-appointments-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims issued by the identity provider.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// ValidateToken validates an HS256 JWT token and returns its claims.
func ValidateToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("token has unknown role %q", claims.Role)
	}

	return claims, nil
}
