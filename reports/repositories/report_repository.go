package repositories

import (
	"errors"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApplicationExportRow is one line of the applications spreadsheet.
type ApplicationExportRow struct {
	StudentName        string
	StudentEmail       string
	ProgramTitle       string
	UniversityName     string
	Country            string
	Status             models.ReviewStatus
	AppliedDate        time.Time
	ScholarshipAwarded bool
}

type ReportRepository interface {
	ApplicationsForExport(status models.ReviewStatus) ([]ApplicationExportRow, error)
	VisaWithStudent(id uuid.UUID) (*models.VisaPermit, error)
	GetStudent(id uuid.UUID) (*models.Student, error)
}

type reportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{DB: db}
}

func (r *reportRepository) ApplicationsForExport(status models.ReviewStatus) ([]ApplicationExportRow, error) {
	var rows []ApplicationExportRow
	query := r.DB.Table("applications").
		Select(`students.name AS student_name, students.email AS student_email,
			programs.title AS program_title, universities.name AS university_name,
			universities.country AS country, applications.status AS status,
			applications.applied_date AS applied_date, applications.scholarship_awarded AS scholarship_awarded`).
		Joins("JOIN students ON students.id = applications.student_id").
		Joins("JOIN programs ON programs.id = applications.program_id").
		Joins("JOIN universities ON universities.id = programs.university_id")
	if status != "" {
		query = query.Where("applications.status = ?", status)
	}
	err := query.Order("applications.applied_date DESC").Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) VisaWithStudent(id uuid.UUID) (*models.VisaPermit, error) {
	var visa models.VisaPermit
	if err := r.DB.Preload("Student").Preload("Student.University").First(&visa, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("visa")
		}
		return nil, err
	}
	return &visa, nil
}

func (r *reportRepository) GetStudent(id uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := r.DB.First(&student, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("student")
		}
		return nil, err
	}
	return &student, nil
}
