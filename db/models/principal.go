package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	StudentRole Role = "student"
	MentorRole  Role = "mentor"
	AdminRole   Role = "admin"
)

func (r Role) Valid() bool {
	return r == StudentRole || r == MentorRole || r == AdminRole
}

// Principal is the authenticated caller handed to every workflow operation.
type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

func (p Principal) Is(role Role) bool {
	return p.Role == role
}

type Student struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key;" json:"id"`
	Name         string           `gorm:"type:varchar(120);not null" json:"name"`
	Email        string           `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	Password     string           `gorm:"type:varchar(225);not null" json:"-"`
	DOB          *datatypes.Date  `json:"dob"`
	Department   string           `gorm:"type:varchar(100)" json:"department"`
	CGPA         *decimal.Decimal `gorm:"type:decimal(3,2)" json:"cgpa"`
	UniversityID *uuid.UUID       `gorm:"type:uuid;index" json:"university_id"`

	University *University `gorm:"foreignKey:UniversityID;constraint:OnDelete:SET NULL;" json:"university,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Mentor struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	Name         string     `gorm:"type:varchar(120);not null" json:"name"`
	Email        string     `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"type:varchar(225);not null" json:"-"`
	Department   string     `gorm:"type:varchar(100)" json:"department"`
	UniversityID *uuid.UUID `gorm:"type:uuid;index" json:"university_id"`

	University *University `gorm:"foreignKey:UniversityID;constraint:OnDelete:SET NULL;" json:"university,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Admin struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	Name     string    `gorm:"type:varchar(80);not null" json:"name"`
	Email    string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:varchar(225);not null" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (m *Mentor) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

func (a *Admin) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
