// Package auth выпускает и проверяет токены устройств для API.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken — подпись или срок действия токена не прошли проверку.
var ErrInvalidToken = errors.New("invalid token")

// Claims — стандартные утверждения плюс имя устройства.
type Claims struct {
	jwt.RegisteredClaims
	Device string `json:"device"`
}

// GenerateToken подписывает токен устройства (HS256). ttl <= 0 — бессрочный токен.
func GenerateToken(device string, secretKey []byte, ttl time.Duration) (string, error) {
	if device == "" {
		return "", errors.New("empty device name")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  device,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Device: device,
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// GetDeviceFromToken проверяет токен и возвращает имя устройства.
func GetDeviceFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.Device == "" {
		return "", ErrInvalidToken
	}
	return claims.Device, nil
}
