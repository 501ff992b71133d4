package http

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"users-auth/internal/domain"
)

var (
	ErrNoCredentials  = errors.New("no credentials")
	ErrInvalidRequest = errors.New("invalid request")
)

// Credentials son los datos crudos que un Strategy extrae de la peticion.
type Credentials struct {
	Email    string
	Password string
	Token    string
	ClientIP string
}

// Strategy es un mecanismo de autenticacion: extrae credenciales y las valida.
type Strategy interface {
	ExtractCredentials(c *gin.Context) (Credentials, error)
	Validate(ctx context.Context, creds Credentials) (domain.SanitizedUser, error)
}

type tokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.SanitizedUser, error)
}

type passwordAuthenticator interface {
	Login(ctx context.Context, email, password, clientIP string) (domain.SanitizedUser, error)
}

// BearerStrategy lee el token de "Authorization: Bearer" o, si falta, de la cookie firmada.
type BearerStrategy struct {
	verifier tokenVerifier
	cookies  *SessionCookies
}

func NewBearerStrategy(verifier tokenVerifier, cookies *SessionCookies) *BearerStrategy {
	return &BearerStrategy{verifier: verifier, cookies: cookies}
}

func (s *BearerStrategy) ExtractCredentials(c *gin.Context) (Credentials, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer ") {
		if token := strings.TrimSpace(header[len("bearer "):]); token != "" {
			return Credentials{Token: token}, nil
		}
	}
	if s.cookies != nil {
		if token, ok := s.cookies.Token(c.Request); ok && token != "" {
			return Credentials{Token: token}, nil
		}
	}
	return Credentials{}, ErrNoCredentials
}

func (s *BearerStrategy) Validate(ctx context.Context, creds Credentials) (domain.SanitizedUser, error) {
	if s.verifier == nil || creds.Token == "" {
		return domain.SanitizedUser{}, ErrNoCredentials
	}
	return s.verifier.VerifyToken(ctx, creds.Token)
}

// PasswordStrategy lee email y contraseña del cuerpo JSON y la IP del cliente.
type PasswordStrategy struct {
	auth passwordAuthenticator
}

func NewPasswordStrategy(auth passwordAuthenticator) *PasswordStrategy {
	return &PasswordStrategy{auth: auth}
}

func (s *PasswordStrategy) ExtractCredentials(c *gin.Context) (Credentials, error) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return Credentials{Email: req.Email, Password: req.Password, ClientIP: c.ClientIP()}, nil
}

func (s *PasswordStrategy) Validate(ctx context.Context, creds Credentials) (domain.SanitizedUser, error) {
	if s.auth == nil {
		return domain.SanitizedUser{}, ErrNoCredentials
	}
	return s.auth.Login(ctx, creds.Email, creds.Password, creds.ClientIP)
}
