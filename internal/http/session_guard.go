package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"users-auth/internal/domain"
)

const authUserKey = "auth_user"

var ErrUnauthorized = errors.New("unauthorized")

// FailurePolicy decide que hace el guard cuando no puede autenticar.
type FailurePolicy int

const (
	// FailClosed rechaza la peticion con 401.
	FailClosed FailurePolicy = iota
	// FailOpen deja pasar la peticion como anonima.
	FailOpen
)

// SessionGuard autentica la peticion con strategy y guarda el usuario en el contexto.
// Con FailClosed cualquier fallo (sin token, token invalido o expirado, sujeto
// inexistente) produce la misma respuesta 401 sin detalle.
func SessionGuard(logger *zap.Logger, strategy Strategy, policy FailurePolicy) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		user, err := authenticate(c, strategy)
		if err != nil {
			if policy == FailOpen {
				c.Next()
				return
			}
			logger.Debug("session rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthorized.Error()})
			return
		}
		c.Set(authUserKey, user)
		c.Next()
	}
}

// RequireSession es el guard que falla cerrado.
func RequireSession(logger *zap.Logger, strategy Strategy) gin.HandlerFunc {
	return SessionGuard(logger, strategy, FailClosed)
}

// OptionalSession enriquece la peticion si hay sesion valida y nunca la rechaza.
func OptionalSession(logger *zap.Logger, strategy Strategy) gin.HandlerFunc {
	return SessionGuard(logger, strategy, FailOpen)
}

func authenticate(c *gin.Context, strategy Strategy) (domain.SanitizedUser, error) {
	if strategy == nil {
		return domain.SanitizedUser{}, ErrNoCredentials
	}
	creds, err := strategy.ExtractCredentials(c)
	if err != nil {
		return domain.SanitizedUser{}, err
	}
	return strategy.Validate(c.Request.Context(), creds)
}

// GetAuthUser obtiene el usuario autenticado desde el contexto.
func GetAuthUser(c *gin.Context) (domain.SanitizedUser, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.SanitizedUser{}, false
	}
	user, ok := val.(domain.SanitizedUser)
	return user, ok
}
