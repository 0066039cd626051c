package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "ledgerd"

// GenerateToken signs a query API token for subject, granting tenants for ttl.
func GenerateToken(subject, secret string, ttl time.Duration, tenants []string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is required")
	}
	if len(tenants) == 0 {
		return "", errors.New("at least one tenant must be granted")
	}
	now := time.Now()
	claims := LedgerClaims{
		Tenants: tenants,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the signature and standard claims of tokenString.
func ParseToken(tokenString, secret string) (*LedgerClaims, error) {
	claims := &LedgerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
