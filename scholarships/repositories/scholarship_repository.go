package repositories

import (
	"errors"
	"fmt"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScholarshipApplicationView is a scholarship application joined with the
// scholarship, program and student it concerns.
type ScholarshipApplicationView struct {
	ID              uuid.UUID           `json:"id"`
	ApplicationID   uuid.UUID           `json:"application_id"`
	ScholarshipID   uuid.UUID           `json:"scholarship_id"`
	ScholarshipName string              `json:"scholarship_name"`
	Amount          decimal.Decimal     `json:"amount"`
	ProgramTitle    string              `json:"program_title"`
	StudentName     string              `json:"student_name"`
	Status          models.ReviewStatus `json:"status"`
}

type ScholarshipRepository interface {
	GetApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error)
	GetProgram(tx *gorm.DB, id uuid.UUID) (*models.Program, error)
	GetScholarship(tx *gorm.DB, id uuid.UUID) (*models.Scholarship, error)
	InsertIfAbsent(tx *gorm.DB, schApp *models.ScholarshipApplication) (bool, error)
	FindByPair(tx *gorm.DB, applicationID, scholarshipID uuid.UUID) (*models.ScholarshipApplication, error)
	LockScholarshipApplication(tx *gorm.DB, id uuid.UUID) (*models.ScholarshipApplication, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status models.ReviewStatus) error
	MarkAwarded(tx *gorm.DB, applicationID uuid.UUID) error
	ForProgram(programID uuid.UUID) ([]models.Scholarship, error)
	List(studentID, mentorID *uuid.UUID, status models.ReviewStatus) ([]ScholarshipApplicationView, error)
}

type scholarshipRepository struct {
	DB *gorm.DB
}

func NewScholarshipRepository(db *gorm.DB) ScholarshipRepository {
	return &scholarshipRepository{DB: db}
}

func (r *scholarshipRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.DB
}

func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return err
}

func (r *scholarshipRepository) GetApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := r.conn(tx).First(&application, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "application")
	}
	return &application, nil
}

func (r *scholarshipRepository) GetProgram(tx *gorm.DB, id uuid.UUID) (*models.Program, error) {
	var program models.Program
	if err := r.conn(tx).First(&program, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "program")
	}
	return &program, nil
}

func (r *scholarshipRepository) GetScholarship(tx *gorm.DB, id uuid.UUID) (*models.Scholarship, error) {
	var scholarship models.Scholarship
	if err := r.conn(tx).First(&scholarship, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "scholarship")
	}
	return &scholarship, nil
}

func (r *scholarshipRepository) InsertIfAbsent(tx *gorm.DB, schApp *models.ScholarshipApplication) (bool, error) {
	result := r.conn(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}, {Name: "scholarship_id"}},
		DoNothing: true,
	}).Create(schApp)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert scholarship application: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *scholarshipRepository) FindByPair(tx *gorm.DB, applicationID, scholarshipID uuid.UUID) (*models.ScholarshipApplication, error) {
	var schApp models.ScholarshipApplication
	err := r.conn(tx).Where("application_id = ? AND scholarship_id = ?", applicationID, scholarshipID).First(&schApp).Error
	if err != nil {
		return nil, notFound(err, "scholarship application")
	}
	return &schApp, nil
}

func (r *scholarshipRepository) LockScholarshipApplication(tx *gorm.DB, id uuid.UUID) (*models.ScholarshipApplication, error) {
	var schApp models.ScholarshipApplication
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&schApp, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "scholarship application")
	}
	return &schApp, nil
}

func (r *scholarshipRepository) UpdateStatus(tx *gorm.DB, id uuid.UUID, status models.ReviewStatus) error {
	result := r.conn(tx).Model(&models.ScholarshipApplication{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update scholarship application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("scholarship application")
	}
	return nil
}

func (r *scholarshipRepository) MarkAwarded(tx *gorm.DB, applicationID uuid.UUID) error {
	err := r.conn(tx).Model(&models.Application{}).Where("id = ?", applicationID).Update("scholarship_awarded", true).Error
	if err != nil {
		return fmt.Errorf("failed to flag scholarship award: %w", err)
	}
	return nil
}

func (r *scholarshipRepository) ForProgram(programID uuid.UUID) ([]models.Scholarship, error) {
	var scholarships []models.Scholarship
	err := r.DB.Where("program_id = ?", programID).Order("name ASC").Find(&scholarships).Error
	return scholarships, err
}

// List filters by student, by supervising mentor, or neither.
func (r *scholarshipRepository) List(studentID, mentorID *uuid.UUID, status models.ReviewStatus) ([]ScholarshipApplicationView, error) {
	query := r.DB.Table("scholarship_applications AS sa").
		Select("sa.id, sa.application_id, sa.scholarship_id, sch.name AS scholarship_name, sch.amount, p.title AS program_title, s.name AS student_name, sa.status").
		Joins("JOIN scholarships sch ON sch.id = sa.scholarship_id").
		Joins("JOIN applications a ON a.id = sa.application_id").
		Joins("JOIN programs p ON p.id = a.program_id").
		Joins("JOIN students s ON s.id = a.student_id")
	if studentID != nil {
		query = query.Where("a.student_id = ?", *studentID)
	}
	if mentorID != nil {
		query = query.Where("p.mentor_id = ?", *mentorID)
	}
	if status != "" {
		query = query.Where("sa.status = ?", status)
	}

	var rows []ScholarshipApplicationView
	err := query.Order("p.title ASC, sch.name ASC, s.name ASC").Scan(&rows).Error
	return rows, err
}
