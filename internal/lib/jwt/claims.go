package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// ErrWrongTokenType is returned when a token of the other type is presented.
var ErrWrongTokenType = errors.New("wrong token type")

// CustomClaims описывает данные, хранящиеся в токене. Subject содержит id пользователя.
type CustomClaims struct {
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *CustomClaims) UserID() string {
	return c.Subject
}

// GenerateAccessToken создаёт короткоживущий токен доступа.
func (j *MakerImpl) GenerateAccessToken(userID, email string) (string, error) {
	return j.generate(userID, email, TypeAccess, j.accessTTL)
}

// GenerateRefreshToken создаёт долгоживущий токен для обновления access-токена.
func (j *MakerImpl) GenerateRefreshToken(userID, email string) (string, error) {
	return j.generate(userID, email, TypeRefresh, j.refreshTTL)
}

// ParseAccessToken проверяет подпись, срок и тип access-токена.
func (j *MakerImpl) ParseAccessToken(tokenStr string) (*CustomClaims, error) {
	return j.parse(tokenStr, TypeAccess)
}

// ParseRefreshToken проверяет подпись, срок и тип refresh-токена.
func (j *MakerImpl) ParseRefreshToken(tokenStr string) (*CustomClaims, error) {
	return j.parse(tokenStr, TypeRefresh)
}

func (j *MakerImpl) generate(userID, email, tokenType string, ttl time.Duration) (string, error) {
	const op = "jwt.generate"
	now := time.Now()
	claims := CustomClaims{
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

func (j *MakerImpl) parse(tokenStr, tokenType string) (*CustomClaims, error) {
	const op = "jwt.parse"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: missing subject", op)
	}
	return claims, nil
}
