package repositories

import (
	"errors"
	"fmt"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequirementStatus is one required document of an application's program
// together with whatever the student uploaded for it.
type RequirementStatus struct {
	RequiredDocumentID uuid.UUID            `json:"req_id"`
	DocumentName       string               `json:"document_name"`
	DocumentID         *uuid.UUID           `json:"document_id"`
	FileName           *string              `json:"file_name"`
	Status             *models.ReviewStatus `json:"status"`
	UploadedAt         *time.Time           `json:"uploaded_at"`
}

type DocumentRepository interface {
	GetApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error)
	GetProgram(tx *gorm.DB, id uuid.UUID) (*models.Program, error)
	GetRequirement(tx *gorm.DB, id uuid.UUID) (*models.RequiredDocument, error)
	FindDocument(tx *gorm.DB, applicationID, reqID uuid.UUID) (*models.ApplicationDocument, error)
	LockDocument(tx *gorm.DB, applicationID, reqID uuid.UUID) (*models.ApplicationDocument, error)
	Upsert(tx *gorm.DB, doc *models.ApplicationDocument) error
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status models.ReviewStatus) error
	Requirements(applicationID, programID uuid.UUID) ([]RequirementStatus, error)
	PendingForMentor(mentorID uuid.UUID) ([]models.ApplicationDocument, error)
}

type documentRepository struct {
	DB *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{DB: db}
}

func (r *documentRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.DB
}

func first(db *gorm.DB, dest interface{}, entity string, query string, args ...interface{}) error {
	if err := db.Where(query, args...).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(entity)
		}
		return err
	}
	return nil
}

func (r *documentRepository) GetApplication(tx *gorm.DB, id uuid.UUID) (*models.Application, error) {
	var application models.Application
	if err := first(r.conn(tx), &application, "application", "id = ?", id); err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *documentRepository) GetProgram(tx *gorm.DB, id uuid.UUID) (*models.Program, error) {
	var program models.Program
	if err := first(r.conn(tx), &program, "program", "id = ?", id); err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *documentRepository) GetRequirement(tx *gorm.DB, id uuid.UUID) (*models.RequiredDocument, error) {
	var requirement models.RequiredDocument
	if err := first(r.conn(tx), &requirement, "required document", "id = ?", id); err != nil {
		return nil, err
	}
	return &requirement, nil
}

func (r *documentRepository) FindDocument(tx *gorm.DB, applicationID, reqID uuid.UUID) (*models.ApplicationDocument, error) {
	var doc models.ApplicationDocument
	err := first(r.conn(tx), &doc, "document", "application_id = ? AND required_document_id = ?", applicationID, reqID)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) LockDocument(tx *gorm.DB, applicationID, reqID uuid.UUID) (*models.ApplicationDocument, error) {
	return r.FindDocument(tx.Clauses(clause.Locking{Strength: "UPDATE"}), applicationID, reqID)
}

// Upsert writes the document for (application, requirement). An existing row
// gets the new file name and goes back to Pending whatever its status was.
func (r *documentRepository) Upsert(tx *gorm.DB, doc *models.ApplicationDocument) error {
	doc.Status = models.StatusPending
	err := r.conn(tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "application_id"}, {Name: "required_document_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"file_name":   doc.FileName,
			"status":      models.StatusPending,
			"uploaded_at": doc.UploadedAt,
			"updated_at":  doc.UploadedAt,
		}),
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("failed to upsert application document: %w", err)
	}
	return nil
}

func (r *documentRepository) UpdateStatus(tx *gorm.DB, id uuid.UUID, status models.ReviewStatus) error {
	result := r.conn(tx).Model(&models.ApplicationDocument{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update document status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("document")
	}
	return nil
}

func (r *documentRepository) Requirements(applicationID, programID uuid.UUID) ([]RequirementStatus, error) {
	var rows []RequirementStatus
	err := r.DB.Table("required_documents AS r").
		Select("r.id AS required_document_id, r.document_name, d.id AS document_id, d.file_name, d.status, d.uploaded_at").
		Joins("LEFT JOIN application_documents d ON d.required_document_id = r.id AND d.application_id = ?", applicationID).
		Where("r.program_id = ?", programID).
		Order("r.document_name ASC").
		Scan(&rows).Error
	return rows, err
}

// PendingForMentor lists Pending uploads across the programs a mentor supervises.
func (r *documentRepository) PendingForMentor(mentorID uuid.UUID) ([]models.ApplicationDocument, error) {
	var docs []models.ApplicationDocument
	err := r.DB.
		Preload("RequiredDocument").
		Joins("JOIN applications a ON a.id = application_documents.application_id").
		Joins("JOIN programs p ON p.id = a.program_id").
		Where("p.mentor_id = ? AND application_documents.status = ?", mentorID, models.StatusPending).
		Order("application_documents.uploaded_at ASC").
		Find(&docs).Error
	return docs, err
}
