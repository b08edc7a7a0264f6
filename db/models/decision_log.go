package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DecisionEntity string

const (
	ApplicationEntity            DecisionEntity = "application"
	ApplicationDocumentEntity    DecisionEntity = "application_document"
	ScholarshipApplicationEntity DecisionEntity = "scholarship_application"
	VisaPermitEntity             DecisionEntity = "visa_permit"
	HousingRequestEntity         DecisionEntity = "housing_request"
	HousingAssignmentEntity      DecisionEntity = "housing_assignment"
)

// DecisionLog is the append-only audit trail of reviewer decisions. It is
// written in the same transaction as the decision it records.
type DecisionLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	Entity    DecisionEntity `gorm:"type:varchar(40);not null;index:idx_decision_logs_entity" json:"entity"`
	EntityID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_decision_logs_entity" json:"entity_id"`
	Decision  Decision       `gorm:"type:varchar(10);not null" json:"decision"`
	Outcome   string         `gorm:"type:varchar(40);not null" json:"outcome"`
	ActorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	ActorRole Role           `gorm:"type:varchar(10);not null" json:"actor_role"`
	Details   datatypes.JSON `json:"details"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *DecisionLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
