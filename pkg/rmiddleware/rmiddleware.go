package rmiddleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/tenant"
)

const MembershipRoleKey = tenant.MembershipRoleKey

// TenantRoleMiddleware gates a route on the caller's role within the active
// tenant. The role comes from the membership table on every request, not
// from a claim, so a revoked member is locked out immediately. Fails closed
// when no tenant is selected.
func TenantRoleMiddleware(repo tenant.TenantRepository, requiredRoles ...tenant.Role) gin.HandlerFunc {
	return tenant.TenantRoleMiddleware(repo, requiredRoles...)
}

// OwnerMiddleware is a convenience middleware for owner-only access.
func OwnerMiddleware(repo tenant.TenantRepository) gin.HandlerFunc {
	return tenant.OwnerMiddleware(repo)
}

// InviteIssuerMiddleware allows the roles that may manage invitations.
func InviteIssuerMiddleware(repo tenant.TenantRepository) gin.HandlerFunc {
	return tenant.InviteIssuerMiddleware(repo)
}
