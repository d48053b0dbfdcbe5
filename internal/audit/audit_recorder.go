package audit

import (
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder appends audit events. Recording is best-effort: a failed write is
// logged and must never fail the admission or billing request it documents.
type Recorder interface {
	Record(tenantID, actorID uint, eventType string, targetID uint, metadata map[string]interface{})
}

type gormRecorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) Recorder {
	return &gormRecorder{db: db}
}

func (r *gormRecorder) Record(tenantID, actorID uint, eventType string, targetID uint, metadata map[string]interface{}) {
	ev := Event{
		TenantID:  tenantID,
		ActorID:   actorID,
		EventType: eventType,
		TargetID:  targetID,
		Metadata:  datatypes.JSONMap(metadata),
	}
	if err := r.db.Create(&ev).Error; err != nil {
		log.Printf("audit: failed to record %s for tenant %d: %v", eventType, tenantID, err)
	}
}
