package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"users-auth/internal/domain"
	"users-auth/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticacion.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	password Strategy
	cookies  *SessionCookies
}

// NewAuthHandler crea una instancia de AuthHandler. password autentica POST /auth/login.
func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, password Strategy, cookies *SessionCookies) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		password: password,
		cookies:  cookies,
	}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.authServ.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateUser):
			c.JSON(http.StatusConflict, gin.H{"error": "user already registered"})
		default:
			h.logger.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register user"})
		}
		return
	}

	h.respondWithSession(c, http.StatusCreated, user)
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	creds, err := h.password.ExtractCredentials(c)
	if err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.password.Validate(c.Request.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		}
		return
	}

	h.respondWithSession(c, http.StatusOK, user)
}

// Logout maneja POST /auth/logout. Los tokens no se revocan: solo se borra la cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.cookies != nil {
		h.cookies.Clear(c.Writer)
	}
	c.Status(http.StatusNoContent)
}

// Me maneja GET /auth/me detras del guard opcional. Sin sesion responde null.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, user)
}

// respondWithSession entrega el token en el header Authorization y en la cookie;
// el cuerpo es solo el usuario.
func (h *AuthHandler) respondWithSession(c *gin.Context, status int, user domain.SanitizedUser) {
	token, err := h.authServ.IssueToken(user)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.Header("Authorization", "Bearer "+token)
	if h.cookies != nil {
		h.cookies.Set(c.Writer, token)
	}
	c.JSON(status, user)
}
