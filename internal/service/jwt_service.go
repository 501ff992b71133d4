package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL es la vida fija de un token de sesion. No hay refresh ni revocacion.
const TokenTTL = 365 * 24 * time.Hour

var tokenSigningMethod = jwt.SigningMethodHS384

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenSigning = errors.New("token signing failed")
)

// TokenCodec emite y valida tokens JWT firmados con HMAC-SHA384.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue firma un token con sub=subject, iat=ahora y exp=ahora+TokenTTL.
func (c *TokenCodec) Issue(subject string) (string, error) {
	if len(c.secret) == 0 {
		return "", fmt.Errorf("%w: empty secret", ErrTokenSigning)
	}
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("%w: empty subject", ErrTokenSigning)
	}
	now := c.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(tokenSigningMethod, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenSigning, err)
	}
	return signed, nil
}

// Verify devuelve el subject de un token valido. El algoritmo se fija aqui, nunca
// se toma de la cabecera del token.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	if len(c.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{tokenSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	var claims tokenClaims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
