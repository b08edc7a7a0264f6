package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationDocument is the uploaded file satisfying one required document
// of one application. Re-uploading overwrites FileName and resets Status.
type ApplicationDocument struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primary_key;" json:"id"`
	ApplicationID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_application_documents_requirement" json:"application_id"`
	RequiredDocumentID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_application_documents_requirement;index" json:"req_id"`
	FileName           string       `gorm:"type:varchar(255);not null" json:"file_name"`
	Status             ReviewStatus `gorm:"type:varchar(30);default:'Pending';index" json:"status"`
	UploadedAt         time.Time    `gorm:"not null" json:"uploaded_at"`

	Application      *Application      `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE;" json:"-"`
	RequiredDocument *RequiredDocument `gorm:"foreignKey:RequiredDocumentID;constraint:OnDelete:CASCADE;" json:"required_document,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *ApplicationDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
