package repositories

import (
	"errors"
	"fmt"
	"strings"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepository reads and writes the three principal tables.
type AccountRepository interface {
	FindStudentByEmail(email string) (*models.Student, error)
	FindMentorByEmail(email string) (*models.Mentor, error)
	FindAdminByEmail(email string) (*models.Admin, error)
	EmailInUse(tx *gorm.DB, email string) (bool, error)
	CreateStudent(tx *gorm.DB, student *models.Student) error
	GetStudent(id uuid.UUID) (*models.Student, error)
	GetMentor(id uuid.UUID) (*models.Mentor, error)
	GetAdmin(id uuid.UUID) (*models.Admin, error)
	UpdateStudent(id uuid.UUID, updates map[string]interface{}) (*models.Student, error)
	UpdateMentor(id uuid.UUID, updates map[string]interface{}) (*models.Mentor, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *accountRepository) FindStudentByEmail(email string) (*models.Student, error) {
	var student models.Student
	if err := r.db.Where("email = ?", normaliseEmail(email)).First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *accountRepository) FindMentorByEmail(email string) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.db.Where("email = ?", normaliseEmail(email)).First(&mentor).Error; err != nil {
		return nil, err
	}
	return &mentor, nil
}

func (r *accountRepository) FindAdminByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("email = ?", normaliseEmail(email)).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// EmailInUse checks the address across students, mentors and admins.
func (r *accountRepository) EmailInUse(tx *gorm.DB, email string) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	email = normaliseEmail(email)
	for _, model := range []interface{}{&models.Student{}, &models.Mentor{}, &models.Admin{}} {
		var count int64
		if err := tx.Model(model).Where("email = ?", email).Count(&count).Error; err != nil {
			return false, fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepository) CreateStudent(tx *gorm.DB, student *models.Student) error {
	if tx == nil {
		tx = r.db
	}
	student.Email = normaliseEmail(student.Email)
	if err := tx.Create(student).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("email already registered")
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (r *accountRepository) GetStudent(id uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := r.db.Preload("University").First(&student, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("student")
		}
		return nil, err
	}
	return &student, nil
}

func (r *accountRepository) GetMentor(id uuid.UUID) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.db.Preload("University").First(&mentor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("mentor")
		}
		return nil, err
	}
	return &mentor, nil
}

func (r *accountRepository) GetAdmin(id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("admin")
		}
		return nil, err
	}
	return &admin, nil
}

func (r *accountRepository) UpdateStudent(id uuid.UUID, updates map[string]interface{}) (*models.Student, error) {
	result := r.db.Model(&models.Student{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update student: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("student")
	}
	return r.GetStudent(id)
}

func (r *accountRepository) UpdateMentor(id uuid.UUID, updates map[string]interface{}) (*models.Mentor, error) {
	result := r.db.Model(&models.Mentor{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update mentor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("mentor")
	}
	return r.GetMentor(id)
}
