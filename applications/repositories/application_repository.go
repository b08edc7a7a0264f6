package repositories

import (
	"errors"
	"fmt"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StudentApplicationView is one row of a student's application list.
type StudentApplicationView struct {
	ID                 uuid.UUID           `json:"id"`
	ProgramID          uuid.UUID           `json:"program_id"`
	ProgramTitle       string              `json:"program_title"`
	UniversityName     string              `json:"university_name"`
	Status             models.ReviewStatus `json:"status"`
	AppliedDate        time.Time           `json:"applied_date"`
	ScholarshipAwarded bool                `json:"scholarship_awarded"`
}

// ReviewerApplicationView is one row of a mentor or admin review queue.
type ReviewerApplicationView struct {
	ID                uuid.UUID           `json:"id"`
	StudentID         uuid.UUID           `json:"student_id"`
	StudentName       string              `json:"student_name"`
	StudentEmail      string              `json:"student_email"`
	StudentDepartment string              `json:"student_department"`
	ProgramID         uuid.UUID           `json:"program_id"`
	ProgramTitle      string              `json:"program_title"`
	Status            models.ReviewStatus `json:"status"`
	AppliedDate       time.Time           `json:"applied_date"`
}

type ApplicationRepository interface {
	GetProgram(tx *gorm.DB, id uuid.UUID) (*models.Program, error)
	InsertIfAbsent(tx *gorm.DB, application *models.Application) (bool, error)
	FindByStudentProgram(tx *gorm.DB, studentID, programID uuid.UUID) (*models.Application, error)
	GetApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error)
	LockApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status models.ReviewStatus) error
	ListForStudent(studentID uuid.UUID) ([]StudentApplicationView, error)
	ListForReviewer(mentorID *uuid.UUID, status models.ReviewStatus, params pagination.PaginationParams) ([]ReviewerApplicationView, int64, error)
}

type applicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{DB: db}
}

func (r *applicationRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.DB
}

func (r *applicationRepository) GetProgram(tx *gorm.DB, id uuid.UUID) (*models.Program, error) {
	var program models.Program
	if err := r.conn(tx).First(&program, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("program")
		}
		return nil, err
	}
	return &program, nil
}

// InsertIfAbsent relies on the (student_id, program_id) unique index so that
// concurrent submits collapse into one row. It reports whether a row was
// inserted.
func (r *applicationRepository) InsertIfAbsent(tx *gorm.DB, application *models.Application) (bool, error) {
	result := r.conn(tx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "program_id"}},
		DoNothing: true,
	}).Create(application)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert application: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *applicationRepository) FindByStudentProgram(tx *gorm.DB, studentID, programID uuid.UUID) (*models.Application, error) {
	var application models.Application
	err := r.conn(tx).Where("student_id = ? AND program_id = ?", studentID, programID).First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("application")
		}
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) GetApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := r.conn(tx).First(&application, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("application")
		}
		return nil, err
	}
	return &application, nil
}

// LockApplication reads the row with SELECT ... FOR UPDATE.
func (r *applicationRepository) LockApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error) {
	return r.GetApplication(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *applicationRepository) UpdateStatus(tx *gorm.DB, id uuid.UUID, status models.ReviewStatus) error {
	result := r.conn(tx).Model(&models.Application{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update application status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("application")
	}
	return nil
}

func (r *applicationRepository) ListForStudent(studentID uuid.UUID) ([]StudentApplicationView, error) {
	var rows []StudentApplicationView
	err := r.DB.Table("applications AS a").
		Select("a.id, a.program_id, p.title AS program_title, u.name AS university_name, a.status, a.applied_date, a.scholarship_awarded").
		Joins("JOIN programs p ON p.id = a.program_id").
		Joins("LEFT JOIN universities u ON u.id = p.university_id").
		Where("a.student_id = ?", studentID).
		Order("a.applied_date DESC").
		Scan(&rows).Error
	return rows, err
}

// ListForReviewer lists applications for one mentor's programs, or for all
// programs when mentorID is nil.
func (r *applicationRepository) ListForReviewer(mentorID *uuid.UUID, status models.ReviewStatus, params pagination.PaginationParams) ([]ReviewerApplicationView, int64, error) {
	query := r.DB.Table("applications AS a").
		Joins("JOIN students s ON s.id = a.student_id").
		Joins("JOIN programs p ON p.id = a.program_id")
	if mentorID != nil {
		query = query.Where("p.mentor_id = ?", *mentorID)
	}
	if status != "" {
		query = query.Where("a.status = ?", status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ReviewerApplicationView
	err := query.
		Select("a.id, a.student_id, s.name AS student_name, s.email AS student_email, s.department AS student_department, a.program_id, p.title AS program_title, a.status, a.applied_date").
		Order("p.title ASC, s.name ASC").
		Scopes(params.Scope).
		Scan(&rows).Error
	return rows, total, err
}
