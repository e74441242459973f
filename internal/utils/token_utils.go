package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// GenerateActorToken signs a token that AuthMiddleware accepts for actor.
// An empty companies list leaves the token unrestricted.
func GenerateActorToken(actor domain.Actor, companies []string, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := middleware.ActorClaims{
		Email:     actor.Email,
		Companies: companies,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   actor.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
