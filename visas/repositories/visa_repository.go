package repositories

import (
	"errors"
	"fmt"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VisaRepository interface {
	EligibleCountries() ([]string, error)
	Create(tx *gorm.DB, visa *models.VisaPermit) error
	Get(tx *gorm.DB, id uuid.UUID) (*models.VisaPermit, error)
	Lock(tx *gorm.DB, id uuid.UUID) (*models.VisaPermit, error)
	Save(tx *gorm.DB, visa *models.VisaPermit) error
	ForStudent(studentID uuid.UUID) ([]models.VisaPermit, error)
	List(status models.ReviewStatus, params pagination.PaginationParams) ([]models.VisaPermit, int64, error)
	ExpiringBetween(from, to datatypes.Date) ([]models.VisaPermit, error)
}

type visaRepository struct {
	DB *gorm.DB
}

func NewVisaRepository(db *gorm.DB) VisaRepository {
	return &visaRepository{DB: db}
}

func (r *visaRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.DB
}

// EligibleCountries is the distinct set of countries of universities that
// host at least one program.
func (r *visaRepository) EligibleCountries() ([]string, error) {
	var countries []string
	err := r.DB.Model(&models.University{}).
		Distinct("universities.country").
		Joins("JOIN programs ON programs.university_id = universities.id").
		Order("universities.country ASC").
		Pluck("universities.country", &countries).Error
	return countries, err
}

func (r *visaRepository) Create(tx *gorm.DB, visa *models.VisaPermit) error {
	if err := r.conn(tx).Create(visa).Error; err != nil {
		return fmt.Errorf("failed to create visa request: %w", err)
	}
	return nil
}

func (r *visaRepository) Get(tx *gorm.DB, id uuid.UUID) (*models.VisaPermit, error) {
	var visa models.VisaPermit
	if err := r.conn(tx).First(&visa, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("visa")
		}
		return nil, err
	}
	return &visa, nil
}

func (r *visaRepository) Lock(tx *gorm.DB, id uuid.UUID) (*models.VisaPermit, error) {
	return r.Get(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *visaRepository) Save(tx *gorm.DB, visa *models.VisaPermit) error {
	err := r.conn(tx).Model(&models.VisaPermit{}).Where("id = ?", visa.ID).Updates(map[string]interface{}{
		"application_status": visa.ApplicationStatus,
		"issued_date":        visa.IssuedDate,
		"expiry_date":        visa.ExpiryDate,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update visa: %w", err)
	}
	return nil
}

// ForStudent lists a student's visas newest first; the first is the current one.
func (r *visaRepository) ForStudent(studentID uuid.UUID) ([]models.VisaPermit, error) {
	var visas []models.VisaPermit
	err := r.DB.Where("student_id = ?", studentID).Order("created_at DESC").Find(&visas).Error
	return visas, err
}

func (r *visaRepository) List(status models.ReviewStatus, params pagination.PaginationParams) ([]models.VisaPermit, int64, error) {
	query := r.DB.Model(&models.VisaPermit{})
	if status != "" {
		query = query.Where("application_status = ?", status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var visas []models.VisaPermit
	err := query.Preload("Student").Order("created_at DESC").Scopes(params.Scope).Find(&visas).Error
	return visas, total, err
}

// ExpiringBetween returns approved visas whose expiry falls in [from, to].
func (r *visaRepository) ExpiringBetween(from, to datatypes.Date) ([]models.VisaPermit, error) {
	var visas []models.VisaPermit
	err := r.DB.
		Where("application_status = ? AND expiry_date >= ? AND expiry_date <= ?", models.StatusApproved, from, to).
		Order("expiry_date ASC").
		Find(&visas).Error
	return visas, err
}
