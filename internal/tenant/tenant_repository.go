package tenant

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// TenantRepository defines the interface for tenant data operations.
type TenantRepository interface {
	CreateTenant(t *Tenant) error
	GetTenantByID(id uint) (*Tenant, error)
	SlugExists(slug string) (bool, error)
	JoinCodeExists(code string) (bool, error)
	FindTenantByCode(code string) (*Tenant, error)
	UpdateJoinCode(tenantID uint, code string) error
	DeleteTenant(id uint) error

	// BindMembership inserts the membership row. A lost race on the
	// (tenant, user) unique index surfaces as ErrDuplicateMembership.
	BindMembership(m *Membership) error
	GetMembership(tenantID, userID uint) (*Membership, error)

	CreateJoinRequest(r *PendingJoinRequest) error
	GetPendingJoinRequest(tenantID, userID uint) (*PendingJoinRequest, error)

	WithTransaction(txFunc func(TenantRepository) error) error
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new instance of TenantRepository.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) CreateTenant(t *Tenant) error {
	return r.db.Create(t).Error
}

func (r *tenantRepository) GetTenantByID(id uint) (*Tenant, error) {
	var t Tenant
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&Tenant{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *tenantRepository) JoinCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&Tenant{}).Where("join_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *tenantRepository) FindTenantByCode(code string) (*Tenant, error) {
	var t Tenant
	if err := r.db.Where("join_code = ?", code).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// UpdateJoinCode swaps the code in one UPDATE; the old code stops resolving
// the instant this commits.
func (r *tenantRepository) UpdateJoinCode(tenantID uint, code string) error {
	return r.db.Model(&Tenant{}).Where("id = ?", tenantID).Update("join_code", code).Error
}

// DeleteTenant hard-deletes a tenant and its memberships. Only used as the
// compensating path when onboarding cannot complete.
func (r *tenantRepository) DeleteTenant(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("tenant_id = ?", id).Delete(&Membership{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&Tenant{}, id).Error
	})
}

func (r *tenantRepository) BindMembership(m *Membership) error {
	err := r.db.Create(m).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return ErrDuplicateMembership
	}
	return err
}

// isUniqueViolation catches drivers that do not translate into
// gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

func (r *tenantRepository) GetMembership(tenantID, userID uint) (*Membership, error) {
	var m Membership
	if err := r.db.Where("tenant_id = ? AND user_id = ?", tenantID, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *tenantRepository) CreateJoinRequest(req *PendingJoinRequest) error {
	return r.db.Create(req).Error
}

func (r *tenantRepository) GetPendingJoinRequest(tenantID, userID uint) (*PendingJoinRequest, error) {
	var req PendingJoinRequest
	err := r.db.Where("tenant_id = ? AND user_id = ? AND status = 'pending'", tenantID, userID).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *tenantRepository) WithTransaction(txFunc func(TenantRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &tenantRepository{db: tx}
		return txFunc(txRepo)
	})
}
