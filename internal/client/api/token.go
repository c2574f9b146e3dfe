package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired indicates that the configured access token has expired
var ErrTokenExpired = errors.New("access token has expired")

// tokenExpired reports whether token is a JWT whose exp claim is in the past.
// Подпись не проверяется: ключа у клиента нет, это делает сервер.
// Непрозрачные (не JWT) токены считаются действующими.
func tokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.After(claims.ExpiresAt.Time)
}
