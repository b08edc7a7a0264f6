package repositories

import (
	"errors"
	"fmt"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OccupancyRow is one housing unit with its current occupant, if any.
type OccupancyRow struct {
	HousingID      uuid.UUID       `json:"housing_id"`
	UniversityName string          `json:"university_name"`
	Location       string          `json:"location"`
	RoomType       string          `json:"room_type"`
	Rent           decimal.Decimal `json:"rent"`
	Availability   bool            `json:"availability"`
	StudentID      *uuid.UUID      `json:"student_id"`
	StudentName    *string         `json:"student_name"`
	AllotmentDate  *time.Time      `json:"allotment_date"`
}

type HousingRepository interface {
	StudentExists(tx *gorm.DB, studentID uuid.UUID) error
	CreateRequest(tx *gorm.DB, req *models.HousingRequest) error
	FindPending(tx *gorm.DB, studentID uuid.UUID, kind models.HousingRequestType) (*models.HousingRequest, error)
	LockRequest(tx *gorm.DB, id uuid.UUID) (*models.HousingRequest, error)
	UpdateRequestStatus(tx *gorm.DB, id uuid.UUID, status models.ReviewStatus) error
	ActiveAssignment(tx *gorm.DB, studentID uuid.UUID, lock bool) (*models.HousingAssignment, error)
	LockHousing(tx *gorm.DB, id uuid.UUID) (*models.Housing, error)
	NextAvailable(tx *gorm.DB) (*models.Housing, error)
	Claim(tx *gorm.DB, housingID uuid.UUID) (bool, error)
	Release(tx *gorm.DB, housingID uuid.UUID) error
	CreateAssignment(tx *gorm.DB, assignment *models.HousingAssignment) error
	Checkout(tx *gorm.DB, assignmentID uuid.UUID, date datatypes.Date) error
	RequestsForStudent(studentID uuid.UUID) ([]models.HousingRequest, error)
	CurrentAssignment(studentID uuid.UUID) (*models.HousingAssignment, error)
	PendingRequests() ([]models.HousingRequest, error)
	Occupancy() ([]OccupancyRow, error)
}

type housingRepository struct {
	DB *gorm.DB
}

func NewHousingRepository(db *gorm.DB) HousingRepository {
	return &housingRepository{DB: db}
}

func (r *housingRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.DB
}

func (r *housingRepository) StudentExists(tx *gorm.DB, studentID uuid.UUID) error {
	var count int64
	if err := r.conn(tx).Model(&models.Student{}).Where("id = ?", studentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("student")
	}
	return nil
}

func (r *housingRepository) CreateRequest(tx *gorm.DB, req *models.HousingRequest) error {
	if err := r.conn(tx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create housing request: %w", err)
	}
	return nil
}

func (r *housingRepository) FindPending(tx *gorm.DB, studentID uuid.UUID, kind models.HousingRequestType) (*models.HousingRequest, error) {
	var req models.HousingRequest
	err := r.conn(tx).
		Where("student_id = ? AND request_type = ? AND status = ?", studentID, kind, models.StatusPending).
		Order("request_date ASC").
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("housing request")
		}
		return nil, err
	}
	return &req, nil
}

func (r *housingRepository) LockRequest(tx *gorm.DB, id uuid.UUID) (*models.HousingRequest, error) {
	var req models.HousingRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("housing request")
		}
		return nil, err
	}
	return &req, nil
}

func (r *housingRepository) UpdateRequestStatus(tx *gorm.DB, id uuid.UUID, status models.ReviewStatus) error {
	result := r.conn(tx).Model(&models.HousingRequest{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update housing request: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.NotFound("housing request")
	}
	return nil
}

// ActiveAssignment returns the student's open assignment, the newest by
// allotment date if data ever holds several.
func (r *housingRepository) ActiveAssignment(tx *gorm.DB, studentID uuid.UUID, lock bool) (*models.HousingAssignment, error) {
	query := r.conn(tx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var assignment models.HousingAssignment
	err := query.
		Where("student_id = ? AND checkout_date IS NULL", studentID).
		Order("allotment_date DESC").
		Order("created_at DESC").
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("housing assignment")
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *housingRepository) LockHousing(tx *gorm.DB, id uuid.UUID) (*models.Housing, error) {
	var housing models.Housing
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&housing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("housing")
		}
		return nil, err
	}
	return &housing, nil
}

// NextAvailable picks the oldest available unit, skipping rows another
// transaction is already claiming. It returns (nil, nil) when nothing is free.
func (r *housingRepository) NextAvailable(tx *gorm.DB) (*models.Housing, error) {
	var housing models.Housing
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("availability = ?", true).
		Order("created_at ASC").
		Order("id ASC").
		Limit(1).
		Find(&housing).Error
	if err != nil {
		return nil, err
	}
	if housing.ID == uuid.Nil {
		return nil, nil
	}
	return &housing, nil
}

// Claim flips availability only if the unit is still free and reports
// whether this transaction won it.
func (r *housingRepository) Claim(tx *gorm.DB, housingID uuid.UUID) (bool, error) {
	result := tx.Model(&models.Housing{}).
		Where("id = ? AND availability = ?", housingID, true).
		Update("availability", false)
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim housing: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *housingRepository) Release(tx *gorm.DB, housingID uuid.UUID) error {
	if err := tx.Model(&models.Housing{}).Where("id = ?", housingID).Update("availability", true).Error; err != nil {
		return fmt.Errorf("failed to release housing: %w", err)
	}
	return nil
}

func (r *housingRepository) CreateAssignment(tx *gorm.DB, assignment *models.HousingAssignment) error {
	if err := tx.Create(assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("student already has an active housing assignment")
		}
		return fmt.Errorf("failed to create housing assignment: %w", err)
	}
	return nil
}

func (r *housingRepository) Checkout(tx *gorm.DB, assignmentID uuid.UUID, date datatypes.Date) error {
	result := tx.Model(&models.HousingAssignment{}).
		Where("id = ? AND checkout_date IS NULL", assignmentID).
		Update("checkout_date", date)
	if result.Error != nil {
		return fmt.Errorf("failed to check out assignment: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return apperrors.Conflict("assignment already checked out")
	}
	return nil
}

func (r *housingRepository) RequestsForStudent(studentID uuid.UUID) ([]models.HousingRequest, error) {
	var reqs []models.HousingRequest
	err := r.DB.Where("student_id = ?", studentID).Order("request_date DESC").Find(&reqs).Error
	return reqs, err
}

func (r *housingRepository) CurrentAssignment(studentID uuid.UUID) (*models.HousingAssignment, error) {
	var assignment models.HousingAssignment
	err := r.DB.Preload("Housing").Preload("Housing.University").
		Where("student_id = ? AND checkout_date IS NULL", studentID).
		Order("allotment_date DESC").
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *housingRepository) PendingRequests() ([]models.HousingRequest, error) {
	var reqs []models.HousingRequest
	err := r.DB.Preload("Student").
		Where("status = ?", models.StatusPending).
		Order("request_date ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *housingRepository) Occupancy() ([]OccupancyRow, error) {
	var rows []OccupancyRow
	err := r.DB.Table("housings AS h").
		Select("h.id AS housing_id, u.name AS university_name, h.location, h.room_type, h.rent, h.availability, ha.student_id, s.name AS student_name, ha.allotment_date").
		Joins("JOIN universities u ON u.id = h.university_id").
		Joins("LEFT JOIN housing_assignments ha ON ha.housing_id = h.id AND ha.checkout_date IS NULL").
		Joins("LEFT JOIN students s ON s.id = ha.student_id").
		Order("u.name ASC, h.location ASC").
		Scan(&rows).Error
	return rows, err
}
