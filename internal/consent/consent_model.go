package consent

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Capture methods for a consent record.
const (
	MethodInviteAccept = "invite_accept"
	MethodCodeJoin     = "code_join"
)

// Record is one immutable consent capture for a minor joining a tenant.
// Every admission of a minor writes its own row; rows are never updated, so
// a re-admission legitimately produces a second capture event.
type Record struct {
	gorm.Model
	TenantID      uint              `gorm:"index;not null" json:"tenant_id"`
	MinorUserID   uint              `gorm:"index;not null" json:"minor_user_id"`
	ParentUserID  uint              `gorm:"index;not null" json:"parent_user_id"`
	Method        string            `gorm:"not null" json:"method"`
	PolicyVersion string            `gorm:"not null" json:"policy_version"`
	Context       datatypes.JSONMap `json:"context"`
}

func (Record) TableName() string { return "consent_records" }

// ParentPlayerLink relates a guardian to a player within one tenant. The
// composite unique index makes the upsert idempotent: re-inviting a parent
// to the same minor is a no-op.
type ParentPlayerLink struct {
	gorm.Model
	TenantID     uint `gorm:"uniqueIndex:idx_parent_player;not null" json:"tenant_id"`
	ParentUserID uint `gorm:"uniqueIndex:idx_parent_player;not null" json:"parent_user_id"`
	PlayerUserID uint `gorm:"uniqueIndex:idx_parent_player;not null" json:"player_user_id"`
}
