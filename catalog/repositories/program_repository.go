package repositories

import (
	"errors"
	"fmt"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgramView is a program row flattened with its university and mentor.
type ProgramView struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	ProgramType    string          `json:"program_type"`
	Duration       *int            `json:"duration"`
	StartDate      *datatypes.Date `json:"start_date"`
	EndDate        *datatypes.Date `json:"end_date"`
	UniversityID   uuid.UUID       `json:"university_id"`
	UniversityName string          `json:"university_name"`
	Country        string          `json:"country"`
	MentorID       *uuid.UUID      `json:"mentor_id"`
	MentorName     *string         `json:"mentor_name"`
}

type ScholarshipView struct {
	ID                  uuid.UUID       `json:"id"`
	ProgramID           uuid.UUID       `json:"program_id"`
	ProgramTitle        string          `json:"program_title"`
	Name                string          `json:"name"`
	Amount              decimal.Decimal `json:"amount"`
	EligibilityCriteria string          `json:"eligibility_criteria"`
}

const programViewColumns = `programs.id, programs.title, programs.program_type, programs.duration,
	programs.start_date, programs.end_date, programs.university_id,
	universities.name AS university_name, universities.country AS country,
	programs.mentor_id, mentors.name AS mentor_name`

func (r *catalogRepository) programViews() *gorm.DB {
	return r.DB.Table("programs").
		Joins("JOIN universities ON universities.id = programs.university_id").
		Joins("LEFT JOIN mentors ON mentors.id = programs.mentor_id")
}

func (r *catalogRepository) CreateProgram(tx *gorm.DB, program *models.Program) error {
	if err := r.conn(tx).Create(program).Error; err != nil {
		return fmt.Errorf("failed to create program: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetProgram(id uuid.UUID) (*models.Program, error) {
	var program models.Program
	if err := r.DB.Preload("University").Preload("Mentor").First(&program, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("program")
		}
		return nil, err
	}
	return &program, nil
}

// GetProgramDetail loads a program with its required documents and scholarships.
func (r *catalogRepository) GetProgramDetail(id uuid.UUID) (*models.Program, error) {
	var program models.Program
	err := r.DB.
		Preload("University").
		Preload("Mentor").
		Preload("RequiredDocuments", func(db *gorm.DB) *gorm.DB { return db.Order("document_name ASC") }).
		Preload("Scholarships", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&program, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("program")
		}
		return nil, err
	}
	return &program, nil
}

// ProgramsByID returns the programs in the order of ids; unknown ids are skipped.
func (r *catalogRepository) ProgramsByID(ids []uuid.UUID) ([]ProgramView, error) {
	if len(ids) == 0 {
		return []ProgramView{}, nil
	}
	var rows []ProgramView
	if err := r.programViews().Select(programViewColumns).Where("programs.id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]ProgramView, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]ProgramView, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

// ProgramIDsBy lists the programs owned by a university or supervised by a mentor.
func (r *catalogRepository) ProgramIDsBy(column string, id uuid.UUID) ([]uuid.UUID, error) {
	if column != "university_id" && column != "mentor_id" {
		return nil, fmt.Errorf("unsupported program column %q", column)
	}
	var ids []uuid.UUID
	err := r.DB.Model(&models.Program{}).Where(column+" = ?", id).Pluck("id", &ids).Error
	return ids, err
}

func (r *catalogRepository) ListPrograms(params pagination.PaginationParams) ([]ProgramView, int64, error) {
	var rows []ProgramView
	var total int64

	query := r.programViews()
	for key, value := range params.Filters {
		if value == "" {
			continue
		}
		switch key {
		case "title":
			query = query.Where("LOWER(programs.title) LIKE ?", like(value))
		case "country":
			query = query.Where("LOWER(universities.country) LIKE ?", like(value))
		case "program_type":
			query = query.Where("programs.program_type = ?", value)
		case "university_id":
			query = query.Where("programs.university_id = ?", value)
		case "mentor_id":
			query = query.Where("programs.mentor_id = ?", value)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Select(programViewColumns).
		Scopes(params.Scope).
		Order("programs.title ASC").
		Scan(&rows).Error
	return rows, total, err
}

func (r *catalogRepository) DeleteProgram(id uuid.UUID) error {
	return r.deleteByID(&models.Program{}, "program", id)
}

func (r *catalogRepository) AddRequiredDocument(tx *gorm.DB, doc *models.RequiredDocument) error {
	if err := r.conn(tx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to add required document: %w", err)
	}
	return nil
}

func (r *catalogRepository) ListRequiredDocuments(programID uuid.UUID) ([]models.RequiredDocument, error) {
	var docs []models.RequiredDocument
	err := r.DB.Where("program_id = ?", programID).Order("document_name ASC").Find(&docs).Error
	return docs, err
}

func (r *catalogRepository) DeleteRequiredDocument(programID, id uuid.UUID) error {
	res := r.DB.Delete(&models.RequiredDocument{}, "id = ? AND program_id = ?", id, programID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete required document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("required document")
	}
	return nil
}

func (r *catalogRepository) CreateScholarship(tx *gorm.DB, scholarship *models.Scholarship) error {
	if err := r.conn(tx).Create(scholarship).Error; err != nil {
		return fmt.Errorf("failed to create scholarship: %w", err)
	}
	return nil
}

func (r *catalogRepository) ListScholarships(params pagination.PaginationParams) ([]ScholarshipView, int64, error) {
	var rows []ScholarshipView
	var total int64

	query := r.DB.Table("scholarships").Joins("JOIN programs ON programs.id = scholarships.program_id")
	if programID := params.Filters["program_id"]; programID != "" {
		query = query.Where("scholarships.program_id = ?", programID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Select(`scholarships.id, scholarships.program_id, programs.title AS program_title,
		scholarships.name, scholarships.amount, scholarships.eligibility_criteria`).
		Scopes(params.Scope).
		Order("scholarships.name ASC").
		Scan(&rows).Error
	return rows, total, err
}

func (r *catalogRepository) DeleteScholarship(id uuid.UUID) error {
	return r.deleteByID(&models.Scholarship{}, "scholarship", id)
}
