package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Scholarship struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	ProgramID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"program_id"`
	Name                string          `gorm:"type:varchar(150);not null" json:"name"`
	Amount              decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	EligibilityCriteria string          `gorm:"type:text" json:"eligibility_criteria"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ScholarshipApplication struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key;" json:"id"`
	ApplicationID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_scholarship_applications_pair" json:"application_id"`
	ScholarshipID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_scholarship_applications_pair;index" json:"scholarship_id"`
	Status        ReviewStatus `gorm:"type:varchar(30);default:'Pending';index" json:"status"`

	Application *Application `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE;" json:"application,omitempty"`
	Scholarship *Scholarship `gorm:"foreignKey:ScholarshipID;constraint:OnDelete:CASCADE;" json:"scholarship,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Scholarship) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (s *ScholarshipApplication) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
