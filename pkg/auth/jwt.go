package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const audience = "bigode-api"

type Claims struct {
	Sub          string `json:"sub"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	BarbershopID string `json:"barbershop_id"`
	jwt.RegisteredClaims
}

// NewAdminToken signs an HS256 token for a barbershop admin.
func NewAdminToken(sub, phone, role, barbershopID, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Sub:          sub,
		Phone:        phone,
		Role:         role,
		BarbershopID: barbershopID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Audience:  []string{audience},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, expiresAt, err
}

func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(audience))
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ExpiresAt reads the exp claim without verifying the signature. Clients use
// it to drop a stored session they can no longer use.
func ExpiresAt(tokenString string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
