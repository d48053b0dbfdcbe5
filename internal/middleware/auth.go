package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ajbcloud/FutsalCulture-sub006/pkg/token"
)

const (
	AuthUserIDKey     = "auth_user_id"
	ActiveTenantIDKey = "active_tenant_id"
)

// AuthMiddleware validates the bearer token and resolves the request's
// identity and active tenant once, at the edge. Handlers read both from the
// gin context; nothing downstream consults session state.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		var exists bool
		if err := db.Table("users").Select("count(*) > 0").Where("id = ? AND deleted_at IS NULL", claims.UserID).Scan(&exists).Error; err != nil || !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
			return
		}

		c.Set(AuthUserIDKey, claims.UserID)
		c.Set(ActiveTenantIDKey, claims.TenantID)
		c.Next()
	}
}

// GetUserIDFromContext extracts the authenticated user ID from the context.
func GetUserIDFromContext(c *gin.Context) (uint, error) {
	userID, exists := c.Get(AuthUserIDKey)
	if !exists {
		return 0, errors.New("user ID not found in context")
	}

	uid, ok := userID.(uint)
	if !ok {
		return 0, fmt.Errorf("user ID has unexpected type: %T", userID)
	}

	return uid, nil
}

// GetActiveTenantID extracts the active tenant from the context. Zero means
// the caller has not selected a tenant; tenant-scoped handlers fail closed
// on it.
func GetActiveTenantID(c *gin.Context) (uint, error) {
	tenantID, exists := c.Get(ActiveTenantIDKey)
	if !exists {
		return 0, errors.New("tenant context not found")
	}

	tid, ok := tenantID.(uint)
	if !ok {
		return 0, fmt.Errorf("tenant ID has unexpected type: %T", tenantID)
	}
	if tid == 0 {
		return 0, errors.New("no active tenant selected")
	}

	return tid, nil
}
