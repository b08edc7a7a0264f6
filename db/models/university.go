package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type University struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name"`
	Country      string    `gorm:"type:varchar(100);not null;index" json:"country"`
	Ranking      *int      `json:"ranking"`
	ContactEmail *string   `gorm:"type:varchar(120);uniqueIndex" json:"contact_email"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Program is a study-abroad offering hosted by a university and supervised by a mentor.
type Program struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	Title        string          `gorm:"type:varchar(200);not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	ProgramType  string          `gorm:"type:varchar(50)" json:"program_type"`
	Duration     *int            `json:"duration"`
	Eligibility  string          `gorm:"type:text" json:"eligibility"`
	StartDate    *datatypes.Date `json:"start_date"`
	EndDate      *datatypes.Date `json:"end_date"`
	UniversityID uuid.UUID       `gorm:"type:uuid;not null;index" json:"university_id"`
	MentorID     *uuid.UUID      `gorm:"type:uuid;index" json:"mentor_id"`

	University        University         `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE;" json:"university"`
	Mentor            *Mentor            `gorm:"foreignKey:MentorID;constraint:OnDelete:SET NULL;" json:"mentor,omitempty"`
	RequiredDocuments []RequiredDocument `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE;" json:"required_documents,omitempty"`
	Scholarships      []Scholarship      `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE;" json:"scholarships,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RequiredDocument is one entry in the catalog of documents a program demands.
type RequiredDocument struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	ProgramID    uuid.UUID `gorm:"type:uuid;not null;index" json:"program_id"`
	DocumentName string    `gorm:"type:varchar(150);not null" json:"document_name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *University) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

func (p *Program) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// SupervisedBy reports whether principal is the mentor assigned to the program.
func (p Program) SupervisedBy(principal Principal) bool {
	return principal.Is(MentorRole) && p.MentorID != nil && *p.MentorID == principal.UserID
}

// ReviewableBy reports whether principal may decide on requests tied to the
// program: any admin, or the program's own mentor.
func (p Program) ReviewableBy(principal Principal) bool {
	return principal.Is(AdminRole) || p.SupervisedBy(principal)
}

func (r *RequiredDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
