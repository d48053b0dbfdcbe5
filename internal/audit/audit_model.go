package audit

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event types recorded by the admission and billing flows.
const (
	EventTenantCreated    = "tenant_created"
	EventInviteSent       = "invite_sent"
	EventInviteResent     = "invite_resent"
	EventInviteRevoked    = "invite_revoked"
	EventInviteAccepted   = "invite_accepted"
	EventMemberJoined     = "member_joined"
	EventJoinQueued       = "join_request_queued"
	EventJoinCodeRotated  = "join_code_rotated"
	EventConsentRecorded  = "consent_recorded"
	EventCheckoutStarted  = "checkout_started"
	EventSubscriptionSync = "subscription_synced"
)

// Event is an append-only compliance fact. Rows are never updated or
// deleted.
type Event struct {
	gorm.Model
	TenantID  uint              `gorm:"index:idx_audit_tenant_type" json:"tenant_id"`
	ActorID   uint              `gorm:"index" json:"actor_id"` // 0 for system-initiated events (webhooks)
	EventType string            `gorm:"index:idx_audit_tenant_type;not null" json:"event_type"`
	TargetID  uint              `json:"target_id,omitempty"`
	Metadata  datatypes.JSONMap `json:"metadata"`
}
