package invite

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Token failure taxonomy. The three reasons are surfaced verbatim to the
// caller; support flows depend on telling them apart.
var (
	ErrTokenNotFound    = errors.New("token is invalid")
	ErrTokenAlreadyUsed = errors.New("token has already been used")
	ErrTokenExpired     = errors.New("token has expired")
)

// Delivery channels for invitation tokens.
const (
	ChannelEmail = "email"
	ChannelLink  = "link"
)

// InviteToken is a single-use credential scoped to one tenant, one target
// email and one role.
//
// Lifecycle: pending -> consumed (ConsumedAt set, terminal) or
// pending -> expired (ExpiresAt reached or forced into the past by a
// revoke, terminal). A terminal token is never redeemable again, so every
// liveness check reduces to: consumed_at IS NULL AND expires_at > now().
type InviteToken struct {
	gorm.Model
	TenantID   uint       `gorm:"index;not null" json:"tenant_id"`
	Email      string     `gorm:"index;not null" json:"email"`
	Role       string     `gorm:"not null" json:"role"`
	Token      string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	IssuedByID uint       `json:"issued_by_id"`
	Channel    string     `gorm:"default:'email'" json:"channel"`
}

// Pending reports whether the token is still redeemable at t.
func (it *InviteToken) Pending(t time.Time) bool {
	return it.ConsumedAt == nil && it.ExpiresAt.After(t)
}

// VerifyToken proves control of an email address. Same lifecycle as
// InviteToken but scoped to (user, email) instead of (tenant, role).
type VerifyToken struct {
	gorm.Model
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Email      string     `gorm:"not null" json:"email"`
	Token      string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}
