package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VisaValidityDays is the fixed validity of an approved visa.
const VisaValidityDays = 365

// VisaPermit is one visa request of a student. A student may hold several;
// the newest by CreatedAt is the current one.
type VisaPermit struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	StudentID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"student_id"`
	Country           string          `gorm:"type:varchar(100);not null" json:"country"`
	ApplicationStatus ReviewStatus    `gorm:"type:varchar(50);default:'Pending';index" json:"application_status"`
	IssuedDate        *datatypes.Date `json:"issued_date"`
	ExpiryDate        *datatypes.Date `gorm:"index" json:"expiry_date"`

	Student *Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE;" json:"student,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *VisaPermit) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
