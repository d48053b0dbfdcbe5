// tenant/model.go
package tenant

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/models"
)

// Role is the closed membership role enumeration. Unknown inbound strings
// map to RoleOther so authorization switches stay exhaustive while new
// client roles do not break parsing.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleCoach     Role = "coach"
	RolePlayer    Role = "player"
	RoleParent    Role = "parent"
	RoleAssistant Role = "assistant"
	RoleOther     Role = "other"
)

// ParseRole maps a wire string onto the closed enumeration.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleOwner, RoleCoach, RolePlayer, RoleParent, RoleAssistant:
		return Role(s)
	default:
		return RoleOther
	}
}

// CanInvite reports whether members with this role may issue, resend or
// revoke invitations.
func (r Role) CanInvite() bool {
	return r == RoleOwner || r == RoleCoach
}

// Minor reports whether this role can denote a minor needing consent.
func (r Role) Minor() bool {
	return r == RolePlayer
}

// Tenant lifecycle statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// ErrDuplicateMembership is returned when a (tenant, user) pair already
// holds a role. The workflow surfaces it; it never overwrites.
var ErrDuplicateMembership = errors.New("user already has a role in this organization")

// Tenant is an onboarded organization. Slug and join code are globally
// unique; the slug is immutable, the join code only changes through an
// explicit rotation.
type Tenant struct {
	gorm.Model
	Name            string             `gorm:"not null" json:"name"`
	Slug            string             `gorm:"uniqueIndex;not null" json:"slug"`
	JoinCode        string             `gorm:"uniqueIndex;size:8;not null" json:"join_code"`
	ContactName     string             `json:"contact_name"`
	ContactEmail    string             `gorm:"not null" json:"contact_email"`
	City            string             `json:"city,omitempty"`
	Country         string             `json:"country,omitempty"`
	Status          string             `gorm:"default:'active'" json:"status"`
	AllowedDomains  models.StringSlice `gorm:"type:jsonb" json:"allowed_domains,omitempty"`
	RequireApproval bool               `gorm:"default:false" json:"require_approval"`
	Settings        datatypes.JSONMap  `json:"settings,omitempty"`
}

// Membership binds one user to one tenant with exactly one role. The
// composite unique index is the arbiter of concurrent admission races.
type Membership struct {
	gorm.Model
	TenantID uint   `gorm:"uniqueIndex:idx_tenant_user;not null" json:"tenant_id"`
	UserID   uint   `gorm:"uniqueIndex:idx_tenant_user;not null" json:"user_id"`
	Role     string `gorm:"not null" json:"role"`
}

// Join request statuses.
const (
	JoinRequestPending = "pending"
)

// PendingJoinRequest is the handoff row enqueued when a tenant requires
// approval for self-serve joins. Approval processing is an external
// collaborator; this core only enqueues.
type PendingJoinRequest struct {
	gorm.Model
	TenantID    uint   `gorm:"index;not null" json:"tenant_id"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Email       string `gorm:"not null" json:"email"`
	Role        string `gorm:"not null" json:"role"`
	ParentEmail string `json:"parent_email,omitempty"`
	Reference   string `gorm:"uniqueIndex;size:36;not null" json:"reference"`
	Status      string `gorm:"default:'pending'" json:"status"`
}
