package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"users-auth/internal/domain"
	"users-auth/internal/repository"
)

var (
	ErrValidation         = errors.New("email and password are required")
	ErrDuplicateUser      = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownSubject     = errors.New("token subject not found")
	ErrRateLimited        = errors.New("rate limited")
)

// AuthService coordina registro, login y resolucion de sujetos de token.
type AuthService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	hasher   PasswordHasher
	tokens   *TokenCodec
	throttle LoginThrottle
}

// NewAuthService crea el servicio. Con throttle nil no se limita el login.
func NewAuthService(logger *zap.Logger, users repository.UserRepository, hasher PasswordHasher, tokens *TokenCodec, throttle LoginThrottle) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	return &AuthService{
		logger:   logger,
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
	}
}

// Register crea un usuario nuevo. Llamarlo dos veces con el mismo email falla
// la segunda vez con ErrDuplicateUser.
func (s *AuthService) Register(ctx context.Context, emailAddr, password string) (domain.SanitizedUser, error) {
	if s.users == nil {
		return domain.SanitizedUser{}, errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.SanitizedUser{}, ErrValidation
	}
	if len(password) > maxPasswordBytes {
		return domain.SanitizedUser{}, fmt.Errorf("%w: password longer than %d bytes", ErrValidation, maxPasswordBytes)
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return domain.SanitizedUser{}, ErrDuplicateUser
	case !errors.Is(err, repository.ErrNotFound):
		return domain.SanitizedUser{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return domain.SanitizedUser{}, err
	}

	// La comprobacion previa es best-effort; el indice UNIQUE resuelve las carreras.
	user, err := s.users.Create(ctx, emailAddr, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return domain.SanitizedUser{}, ErrDuplicateUser
		}
		return domain.SanitizedUser{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user.Sanitize(), nil
}

// Login nunca distingue entre email inexistente y contraseña incorrecta.
// clientIP forma parte de la clave del throttle junto con el email.
func (s *AuthService) Login(ctx context.Context, emailAddr, password, clientIP string) (domain.SanitizedUser, error) {
	if s.users == nil {
		return domain.SanitizedUser{}, errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.SanitizedUser{}, ErrInvalidCredentials
	}
	key := LoginThrottleKey(clientIP, emailAddr)
	if s.throttle != nil && !s.throttle.Allow(ctx, key) {
		return domain.SanitizedUser{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordLoginFailure(ctx, key)
			return domain.SanitizedUser{}, ErrInvalidCredentials
		}
		return domain.SanitizedUser{}, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordLoginFailure(ctx, key)
		return domain.SanitizedUser{}, ErrInvalidCredentials
	}
	if s.throttle != nil {
		s.throttle.Reset(ctx, key)
	}
	return user.Sanitize(), nil
}

func (s *AuthService) recordLoginFailure(ctx context.Context, key string) {
	if s.throttle != nil {
		s.throttle.RecordFailure(ctx, key)
	}
}

// ResolveSubject convierte el subject de un token verificado en un usuario.
func (s *AuthService) ResolveSubject(ctx context.Context, subject string) (domain.SanitizedUser, error) {
	if s.users == nil {
		return domain.SanitizedUser{}, ErrUnknownSubject
	}
	user, err := s.users.GetByEmail(ctx, normalizeEmail(subject))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("resolve token subject failed", zap.Error(err))
		}
		return domain.SanitizedUser{}, fmt.Errorf("%w: %v", ErrUnknownSubject, err)
	}
	return user.Sanitize(), nil
}

// IssueToken firma un token cuyo subject es el email del usuario.
func (s *AuthService) IssueToken(user domain.SanitizedUser) (string, error) {
	if s.tokens == nil {
		return "", fmt.Errorf("%w: token codec not configured", ErrTokenSigning)
	}
	return s.tokens.Issue(user.Email)
}

// VerifyToken valida el token y resuelve su usuario.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (domain.SanitizedUser, error) {
	if s.tokens == nil {
		return domain.SanitizedUser{}, ErrInvalidToken
	}
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return domain.SanitizedUser{}, err
	}
	return s.ResolveSubject(ctx, subject)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
