package repositories

import (
	"errors"
	"fmt"
	"strings"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogRepository interface {
	CreateUniversity(tx *gorm.DB, university *models.University) error
	GetUniversity(tx *gorm.DB, id uuid.UUID) (*models.University, error)
	ListUniversities(params pagination.PaginationParams) ([]models.University, int64, error)
	DeleteUniversity(id uuid.UUID) error

	CreateMentor(tx *gorm.DB, mentor *models.Mentor) error
	GetMentor(tx *gorm.DB, id uuid.UUID) (*models.Mentor, error)
	ListMentors(params pagination.PaginationParams) ([]MentorView, int64, error)
	DeleteMentor(id uuid.UUID) error

	ListStudents(params pagination.PaginationParams) ([]models.Student, int64, error)
	DeleteStudent(id uuid.UUID) error

	CreateProgram(tx *gorm.DB, program *models.Program) error
	GetProgram(id uuid.UUID) (*models.Program, error)
	GetProgramDetail(id uuid.UUID) (*models.Program, error)
	ProgramsByID(ids []uuid.UUID) ([]ProgramView, error)
	ProgramIDsBy(column string, id uuid.UUID) ([]uuid.UUID, error)
	ListPrograms(params pagination.PaginationParams) ([]ProgramView, int64, error)
	DeleteProgram(id uuid.UUID) error

	AddRequiredDocument(tx *gorm.DB, doc *models.RequiredDocument) error
	ListRequiredDocuments(programID uuid.UUID) ([]models.RequiredDocument, error)
	DeleteRequiredDocument(programID, id uuid.UUID) error

	CreateScholarship(tx *gorm.DB, scholarship *models.Scholarship) error
	ListScholarships(params pagination.PaginationParams) ([]ScholarshipView, int64, error)
	DeleteScholarship(id uuid.UUID) error

	CreateHousing(tx *gorm.DB, housing *models.Housing) error
	GetHousing(id uuid.UUID) (*models.Housing, error)
	ListHousing(params pagination.PaginationParams) ([]HousingView, int64, error)
	DeleteHousing(id uuid.UUID) error

	AdminCounts() (*AdminCounts, error)
	StudentCounts(studentID uuid.UUID) (*StudentCounts, error)
	MentorCounts(mentorID uuid.UUID) (*MentorCounts, error)
	AssignedStudents(mentorID uuid.UUID) ([]AssignedStudent, error)
}

type catalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{DB: db}
}

func (r *catalogRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.DB
}

// like builds a case-insensitive contains pattern usable on every driver.
func like(value string) string {
	return "%" + strings.ToLower(strings.TrimSpace(value)) + "%"
}

// deleteByID removes one row and reports NotFound when nothing matched.
func (r *catalogRepository) deleteByID(model interface{}, entity string, id uuid.UUID) error {
	res := r.DB.Delete(model, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(entity)
	}
	return nil
}

func (r *catalogRepository) CreateUniversity(tx *gorm.DB, university *models.University) error {
	if err := r.conn(tx).Create(university).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("contact email already used by another university")
		}
		return fmt.Errorf("failed to create university: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetUniversity(tx *gorm.DB, id uuid.UUID) (*models.University, error) {
	var university models.University
	if err := r.conn(tx).First(&university, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("university")
		}
		return nil, err
	}
	return &university, nil
}

func (r *catalogRepository) ListUniversities(params pagination.PaginationParams) ([]models.University, int64, error) {
	var universities []models.University
	var total int64

	query := r.DB.Model(&models.University{})
	for key, value := range params.Filters {
		switch key {
		case "name":
			query = query.Where("LOWER(name) LIKE ?", like(value))
		case "country":
			query = query.Where("LOWER(country) LIKE ?", like(value))
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Scopes(params.Scope).Order("name ASC").Find(&universities).Error; err != nil {
		return nil, 0, err
	}
	return universities, total, nil
}

func (r *catalogRepository) DeleteUniversity(id uuid.UUID) error {
	return r.deleteByID(&models.University{}, "university", id)
}

// MentorView is a mentor row with its university name.
type MentorView struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Department     string    `json:"department"`
	UniversityName *string   `json:"university_name"`
}

func (r *catalogRepository) CreateMentor(tx *gorm.DB, mentor *models.Mentor) error {
	if err := r.conn(tx).Create(mentor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("email already registered")
		}
		return fmt.Errorf("failed to create mentor: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetMentor(tx *gorm.DB, id uuid.UUID) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.conn(tx).First(&mentor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("mentor")
		}
		return nil, err
	}
	return &mentor, nil
}

func (r *catalogRepository) ListMentors(params pagination.PaginationParams) ([]MentorView, int64, error) {
	var rows []MentorView
	var total int64

	query := r.DB.Table("mentors").
		Joins("LEFT JOIN universities ON universities.id = mentors.university_id")
	if name, ok := params.Filters["name"]; ok && name != "" {
		query = query.Where("LOWER(mentors.name) LIKE ?", like(name))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Select("mentors.id, mentors.name, mentors.email, mentors.department, universities.name AS university_name").
		Scopes(params.Scope).
		Order("mentors.name ASC").
		Scan(&rows).Error
	return rows, total, err
}

func (r *catalogRepository) DeleteMentor(id uuid.UUID) error {
	return r.deleteByID(&models.Mentor{}, "mentor", id)
}

func (r *catalogRepository) ListStudents(params pagination.PaginationParams) ([]models.Student, int64, error) {
	var students []models.Student
	var total int64

	query := r.DB.Model(&models.Student{})
	for key, value := range params.Filters {
		switch key {
		case "name":
			query = query.Where("LOWER(name) LIKE ?", like(value))
		case "department":
			query = query.Where("LOWER(department) LIKE ?", like(value))
		case "email":
			query = query.Where("LOWER(email) LIKE ?", like(value))
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("University").Scopes(params.Scope).Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// DeleteStudent removes the student; applications, documents, visas and
// housing rows go with it through ON DELETE CASCADE.
func (r *catalogRepository) DeleteStudent(id uuid.UUID) error {
	return r.deleteByID(&models.Student{}, "student", id)
}
