// Package jwt выпускает и проверяет access- и refresh-токены.
//
// Оба типа подписываются одним секретом (HS256) и различаются полем token_type,
// поэтому refresh-токен нельзя предъявить вместо access-токена и наоборот.
package jwt

import (
	"time"
)

// Maker описывает выпуск и разбор токенов.
type Maker interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ParseAccessToken(tokenStr string) (*CustomClaims, error)
	ParseRefreshToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с секретным ключом и отдельными TTL для двух типов токенов.
type MakerImpl struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTMaker создаёт MakerImpl.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}
