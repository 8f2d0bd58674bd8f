package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/framehaus/framehaus/internal/api/middleware"
	"github.com/framehaus/framehaus/internal/auth"
	"github.com/framehaus/framehaus/internal/models"
)

// profileStore is the slice of the store needed for brand access checks.
type profileStore interface {
	GetSuperuserByID(ctx context.Context, id uuid.UUID) (*models.Superuser, error)
}

// parseIDParam parses a UUID path parameter or writes a 400 response.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// authorizeBrand returns the session user if they are a superadmin or own the
// brand, aborting with 401/403/404 otherwise.
func authorizeBrand(c *gin.Context, store profileStore, brandID uuid.UUID) *auth.SessionUser {
	user := middleware.RequireUser(c)
	if user == nil {
		return nil
	}
	if user.IsSuperadmin {
		return user
	}

	profile, err := store.GetSuperuserByID(c.Request.Context(), user.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to verify access"})
		return nil
	}
	if profile == nil || !profile.OwnsBrand(brandID) {
		// 404 rather than 403 so tenants cannot probe for other brand ids.
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "brand not found"})
		return nil
	}
	return user
}
