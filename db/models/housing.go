package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HousingRequestType string

const (
	HousingApply  HousingRequestType = "apply"
	HousingVacate HousingRequestType = "vacate"
)

func (t HousingRequestType) Valid() bool {
	return t == HousingApply || t == HousingVacate
}

// Housing is one unit of inventory. Availability is false while an active
// assignment points at it.
type Housing struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	UniversityID uuid.UUID       `gorm:"type:uuid;not null;index" json:"university_id"`
	Location     string          `gorm:"type:varchar(150)" json:"location"`
	RoomType     string          `gorm:"type:varchar(50)" json:"room_type"`
	Rent         decimal.Decimal `gorm:"type:decimal(10,2)" json:"rent"`
	Availability bool            `gorm:"default:true;index" json:"availability"`

	University *University `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE;" json:"university,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HousingAssignment links a student to an occupied unit. CheckoutDate is nil
// while the assignment is active; the partial unique index keeps one active
// assignment per student.
type HousingAssignment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	StudentID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_housing_assignments_active,where:checkout_date IS NULL" json:"student_id"`
	HousingID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"housing_id"`
	AllotmentDate datatypes.Date  `gorm:"not null" json:"allotment_date"`
	CheckoutDate  *datatypes.Date `json:"checkout_date"`

	Student *Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE;" json:"student,omitempty"`
	Housing *Housing `gorm:"foreignKey:HousingID;constraint:OnDelete:CASCADE;" json:"housing,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type HousingRequest struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key;" json:"id"`
	StudentID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"student_id"`
	RequestType HousingRequestType `gorm:"type:varchar(20);not null" json:"request_type"`
	Status      ReviewStatus       `gorm:"type:varchar(30);default:'Pending';index" json:"status"`
	RequestDate time.Time          `gorm:"not null" json:"request_date"`

	Student *Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE;" json:"student,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (h *Housing) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}

func (a *HousingAssignment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

func (r *HousingRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
