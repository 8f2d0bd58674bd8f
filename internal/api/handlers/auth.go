package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/api/middleware"
	"github.com/framehaus/framehaus/internal/auth"
)

// AuthHandler handles session login and logout.
type AuthHandler struct {
	login    *auth.LoginService
	sessions *auth.SessionStore
	logger   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(login *auth.LoginService, sessions *auth.SessionStore, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		login:    login,
		sessions: sessions,
		logger:   logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterRoutes registers unauthenticated auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
}

// RegisterSessionRoutes registers routes that require an authenticated session.
func (h *AuthHandler) RegisterSessionRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Me)
	r.POST("/password", h.ChangePassword)
}

// LoginRequest is the login form payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a superuser and starts a session.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.login.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNoProfile):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		default:
			h.logger.Error().Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	if err := h.sessions.SetUser(c.Request, c.Writer, user); err != nil {
		h.logger.Error().Err(err).Msg("failed to save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"is_superadmin": user.IsSuperadmin,
	})
}

// Logout ends the current session.
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.ClearUser(c.Request, c.Writer); err != nil {
		h.logger.Warn().Err(err).Msg("failed to clear session")
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me returns the current session user.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.RequireUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"is_superadmin": user.IsSuperadmin,
	})
}

// ChangePasswordRequest is the password rotation payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword rotates the current user's password.
// POST /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := middleware.RequireUser(c)
	if user == nil {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current and new password are required"})
		return
	}

	err := h.login.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password changed"})
}
