package auth

import (
	"errors"
	"fmt"
	"time"

	"parilka/internal/config"

	jwt "github.com/golang-jwt/jwt/v5"
)

// JWTIssuer выпускает подписанные HS256 access-токены.
type JWTIssuer struct {
	secret   []byte
	issuer   string
	audience string
}

func NewJWTIssuer(cfg config.AuthConfig) *JWTIssuer {
	return &JWTIssuer{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
	}
}

// Issue подписывает токен с sub=subject и произвольными claims поверх
// зарегистрированных полей.
func (i *JWTIssuer) Issue(subject string, claims map[string]any, ttl time.Duration) (string, error) {
	now := time.Now()
	mapClaims := jwt.MapClaims{
		"sub": subject,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(ttl)),
	}
	if i.issuer != "" {
		mapClaims["iss"] = i.issuer
	}
	if i.audience != "" {
		mapClaims["aud"] = i.audience
	}
	for k, v := range claims {
		mapClaims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseValidate разбирает и проверяет подпись токена. Используется
// в тестах и пригодится будущему middleware.
func (i *JWTIssuer) ParseValidate(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
