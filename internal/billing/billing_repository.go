package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// SubscriptionRepository persists per-tenant subscription state. All webhook
// writes are absolute "set to this state" updates keyed by tenant id, so
// redelivery of the same event is naturally idempotent without a separate
// de-duplication ledger.
type SubscriptionRepository interface {
	Create(s *Subscription) error
	GetByTenant(tenantID uint) (*Subscription, error)
	ApplyCheckoutCompleted(tenantID uint, customerID, subscriptionID, plan string, currentPeriodEnd *time.Time) error
	MarkCanceled(tenantID uint) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(s *Subscription) error {
	return r.db.Create(s).Error
}

func (r *subscriptionRepository) GetByTenant(tenantID uint) (*Subscription, error) {
	var s Subscription
	if err := r.db.Where("tenant_id = ?", tenantID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepository) ApplyCheckoutCompleted(tenantID uint, customerID, subscriptionID, plan string, currentPeriodEnd *time.Time) error {
	updates := map[string]interface{}{
		"processor_customer_id":     customerID,
		"processor_subscription_id": subscriptionID,
		"plan":                      plan,
		"status":                    StatusActive,
		"current_period_end":        currentPeriodEnd,
	}
	return r.db.Model(&Subscription{}).Where("tenant_id = ?", tenantID).Updates(updates).Error
}

func (r *subscriptionRepository) MarkCanceled(tenantID uint) error {
	return r.db.Model(&Subscription{}).Where("tenant_id = ?", tenantID).Update("status", StatusCanceled).Error
}
