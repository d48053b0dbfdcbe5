package tenant

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/middleware"
)

const MembershipRoleKey = "membership_role"

// TenantRoleMiddleware gates a route on the caller's role within the active
// tenant. The role comes from the membership table on every request, not
// from a claim, so a revoked member is locked out immediately. Fails closed
// when no tenant is selected.
func TenantRoleMiddleware(repo TenantRepository, requiredRoles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.GetUserIDFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: " + err.Error()})
			return
		}

		tenantID, err := middleware.GetActiveTenantID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No active organization: " + err.Error()})
			return
		}

		m, err := repo.GetMembership(tenantID, userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
			return
		}
		if m == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You are not a member of this organization"})
			return
		}

		role := ParseRole(m.Role)
		allowed := false
		for _, required := range requiredRoles {
			if role == required {
				allowed = true
				break
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "You don't have permission to access this resource",
				"required": requiredRoles,
			})
			return
		}

		c.Set(MembershipRoleKey, role)
		c.Next()
	}
}

// OwnerMiddleware is a convenience middleware for owner-only access.
func OwnerMiddleware(repo TenantRepository) gin.HandlerFunc {
	return TenantRoleMiddleware(repo, RoleOwner)
}

// InviteIssuerMiddleware allows the roles that may manage invitations.
func InviteIssuerMiddleware(repo TenantRepository) gin.HandlerFunc {
	return TenantRoleMiddleware(repo, RoleOwner, RoleCoach)
}
