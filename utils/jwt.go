package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/konnn04/food-app-server/entity"
)

// Claims carries the authenticated principal. Tokens are issued by the
// external auth service with the same secret.
type Claims struct {
	PrincipalID uint                 `json:"principalId"`
	Kind        entity.PrincipalKind `json:"kind"`
	jwt.RegisteredClaims
}

func GenerateToken(principalID uint, kind entity.PrincipalKind, secret string, ttl time.Duration) (string, error) {
	claims := &Claims{
		PrincipalID: principalID,
		Kind:        kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.PrincipalID == 0 || !claims.Kind.Valid() {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
