package consent

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository records parental consent and maintains parent-player links.
type Repository interface {
	// RecordConsent writes one immutable consent record. A failure must
	// abort the admission that requested it; callers never retry silently.
	RecordConsent(tenantID, minorID, parentID uint, method, policyVersion string, context map[string]interface{}) error
	// LinkParentPlayer upserts the (tenant, parent, player) relationship.
	// Safe to call when the link already exists.
	LinkParentPlayer(tenantID, parentID, playerID uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RecordConsent(tenantID, minorID, parentID uint, method, policyVersion string, context map[string]interface{}) error {
	rec := Record{
		TenantID:      tenantID,
		MinorUserID:   minorID,
		ParentUserID:  parentID,
		Method:        method,
		PolicyVersion: policyVersion,
		Context:       datatypes.JSONMap(context),
	}
	return r.db.Create(&rec).Error
}

func (r *repository) LinkParentPlayer(tenantID, parentID, playerID uint) error {
	link := ParentPlayerLink{
		TenantID:     tenantID,
		ParentUserID: parentID,
		PlayerUserID: playerID,
	}
	// Insert-if-absent on the composite unique index; the uniqueness
	// constraint, not application logic, arbitrates duplicate calls.
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"}, {Name: "parent_user_id"}, {Name: "player_user_id"},
		},
		DoNothing: true,
	}).Create(&link).Error
}
