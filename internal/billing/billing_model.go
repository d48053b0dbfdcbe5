package billing

import (
	"time"

	"gorm.io/gorm"
)

// Plan keys.
const (
	PlanFree = "free"
	PlanClub = "club"
)

// Subscription statuses.
const (
	StatusInactive = "inactive"
	StatusActive   = "active"
	StatusCanceled = "canceled"
)

// Subscription mirrors the payment processor's view of a tenant, exactly one
// row per tenant. Created inactive/free at onboarding; afterwards it changes
// only in response to validated webhook events, never from client-initiated
// API calls (the one-time checkout-session creation aside).
type Subscription struct {
	gorm.Model
	TenantID                uint       `gorm:"uniqueIndex;not null" json:"tenant_id"`
	ProcessorCustomerID     string     `gorm:"index;not null" json:"processor_customer_id"`
	ProcessorSubscriptionID *string    `gorm:"index" json:"processor_subscription_id,omitempty"`
	Plan                    string     `gorm:"default:'free'" json:"plan"`
	Status                  string     `gorm:"default:'inactive'" json:"status"`
	TrialEnd                *time.Time `json:"trial_end,omitempty"`
	CurrentPeriodEnd        *time.Time `json:"current_period_end,omitempty"`
}
