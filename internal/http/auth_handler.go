package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de cuenta y sesion.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	jwtServ  *service.JWTService
	cookies  CookieConfig
	loginTTL time.Duration
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, jwtServ *service.JWTService, cookies CookieConfig, loginTTL time.Duration) *AuthHandler {
	if loginTTL <= 0 {
		loginTTL = 30 * 24 * time.Hour
	}
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		jwtServ:  jwtServ,
		cookies:  cookies,
		loginTTL: loginTTL,
	}
}

// Register maneja POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "register", err)
		return
	}

	identity, err := h.authServ.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "register", err)
		return
	}

	h.cookies.setSession(c, identity.SessionToken, h.loginTTL, http.SameSiteLaxMode)
	c.JSON(http.StatusCreated, gin.H{"user": identity})
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "login", err)
		return
	}

	identity, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, "login", err)
		return
	}

	h.cookies.setSession(c, identity.SessionToken, h.loginTTL, http.SameSiteLaxMode)
	c.JSON(http.StatusOK, gin.H{"user": identity})
}

// Logout maneja POST /api/auth/logout. Siempre limpia la cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := sessionToken(c)
	if token == "" {
		if identity, ok := IdentityFrom(c); ok {
			token = identity.SessionToken
		}
	}
	if err := h.authServ.Logout(c.Request.Context(), token); err != nil {
		h.logger.Warn("logout failed", zap.Error(err))
	}
	h.cookies.clearSession(c)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// Me maneja GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	user, err := h.authServ.Me(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.logger, "get current user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "session_expires_at": identity.SessionExpiresAt})
}

// UpdateProfile maneja PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "update profile", err)
		return
	}
	user, err := h.authServ.UpdateProfile(c.Request.Context(), identity, patch)
	if err != nil {
		writeError(c, h.logger, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// IssueToken maneja POST /api/auth/token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	token, err := h.jwtServ.Issue(identity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJWTDisabled):
			c.JSON(http.StatusNotImplemented, gin.H{"error": "bearer tokens are not enabled"})
		case errors.Is(err, service.ErrJWTExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		default:
			h.logger.Error("jwt issue failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
