package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/auth"
)

// SuperadminMiddleware returns a Gin middleware that requires superadmin
// privileges. Must run after AuthMiddleware.
func SuperadminMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "superadmin_middleware").Logger()

	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			log.Debug().Str("path", c.Request.URL.Path).Msg("unauthenticated request to superadmin endpoint")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		if !user.IsSuperadmin {
			log.Warn().
				Str("user_id", user.ID.String()).
				Str("path", c.Request.URL.Path).
				Msg("non-superadmin attempted to access superadmin endpoint")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "superadmin privileges required"})
			return
		}

		c.Next()
	}
}

// RequireSuperadmin is a helper that checks superadmin status or aborts.
func RequireSuperadmin(c *gin.Context) *auth.SessionUser {
	user := GetUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil
	}
	if !user.IsSuperadmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "superadmin privileges required"})
		return nil
	}
	return user
}

// IsSuperadmin returns true if the current user is a superadmin.
func IsSuperadmin(c *gin.Context) bool {
	user := GetUser(c)
	return user != nil && user.IsSuperadmin
}
