package repositories

import (
	"errors"
	"fmt"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type HousingView struct {
	ID             uuid.UUID       `json:"id"`
	UniversityID   uuid.UUID       `json:"university_id"`
	UniversityName string          `json:"university_name"`
	Location       string          `json:"location"`
	RoomType       string          `json:"room_type"`
	Rent           decimal.Decimal `json:"rent"`
	Availability   bool            `json:"availability"`
}

func (r *catalogRepository) CreateHousing(tx *gorm.DB, housing *models.Housing) error {
	if err := r.conn(tx).Create(housing).Error; err != nil {
		return fmt.Errorf("failed to create housing: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetHousing(id uuid.UUID) (*models.Housing, error) {
	var housing models.Housing
	if err := r.DB.First(&housing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("housing")
		}
		return nil, err
	}
	return &housing, nil
}

func (r *catalogRepository) ListHousing(params pagination.PaginationParams) ([]HousingView, int64, error) {
	var rows []HousingView
	var total int64

	query := r.DB.Table("housings").Joins("JOIN universities ON universities.id = housings.university_id")
	for key, value := range params.Filters {
		switch key {
		case "availability":
			if value == "true" {
				query = query.Where("housings.availability = ?", true)
			} else if value == "false" {
				query = query.Where("housings.availability = ?", false)
			}
		case "university_id":
			query = query.Where("housings.university_id = ?", value)
		case "room_type":
			query = query.Where("housings.room_type = ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Select(`housings.id, housings.university_id, universities.name AS university_name,
		housings.location, housings.room_type, housings.rent, housings.availability`).
		Scopes(params.Scope).
		Order("housings.created_at ASC").
		Scan(&rows).Error
	return rows, total, err
}

func (r *catalogRepository) DeleteHousing(id uuid.UUID) error {
	return r.deleteByID(&models.Housing{}, "housing", id)
}
