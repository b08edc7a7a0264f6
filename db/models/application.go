package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application is a student's request to join a program. At most one row
// exists per (student, program).
type Application struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primary_key;" json:"id"`
	StudentID          uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_applications_student_program" json:"student_id"`
	ProgramID          uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_applications_student_program;index" json:"program_id"`
	Status             ReviewStatus `gorm:"type:varchar(30);default:'Pending';index" json:"status"`
	AppliedDate        time.Time    `gorm:"not null" json:"applied_date"`
	ScholarshipAwarded bool         `gorm:"default:false" json:"scholarship_awarded"`

	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE;" json:"student,omitempty"`
	Program Program `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE;" json:"program,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
