package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/documents/repositories"
	"study-abroad-backend/documents/validators"
	"study-abroad-backend/internal/audit"
	"study-abroad-backend/internal/metrics"
	"study-abroad-backend/notifications"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DocumentService struct {
	DB        *gorm.DB
	Repo      repositories.DocumentRepository
	Storage   utils.FileStorage
	Validator *validators.DocumentValidator
	Notifier  notifications.Notifier
	Now       func() time.Time
}

func NewDocumentService(db *gorm.DB, repo repositories.DocumentRepository, storage utils.FileStorage, notifier notifications.Notifier) *DocumentService {
	return &DocumentService{
		DB:        db,
		Repo:      repo,
		Storage:   storage,
		Validator: validators.NewDocumentValidator(),
		Notifier:  notifier,
		Now:       time.Now,
	}
}

// Upload stores a file for one required document of the caller's
// application. Uploading again replaces the file and puts the document back
// into Pending.
func (s *DocumentService) Upload(ctx context.Context, principal models.Principal, applicationID, reqID uuid.UUID, fileName string, content []byte) (*models.ApplicationDocument, error) {
	if !principal.Is(models.StudentRole) {
		return nil, apperrors.Forbidden("only students can upload documents")
	}

	application, err := s.Repo.GetApplication(nil, applicationID)
	if err != nil {
		return nil, err
	}
	if application.StudentID != principal.UserID {
		return nil, apperrors.Forbidden("Unauthorized")
	}
	requirement, err := s.Repo.GetRequirement(nil, reqID)
	if err != nil {
		return nil, err
	}
	if requirement.ProgramID != application.ProgramID {
		return nil, apperrors.NewValidationError("document %q is not required by this program", requirement.DocumentName)
	}

	if _, err := s.Validator.ValidateUpload(fileName, content); err != nil {
		return nil, err
	}

	stored, err := s.Storage.Save(principal.UserID, fileName, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	var doc *models.ApplicationDocument
	var previous string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.Repo.FindDocument(tx, applicationID, reqID)
		switch {
		case err == nil:
			previous = existing.FileName
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		if err := s.Repo.Upsert(tx, &models.ApplicationDocument{
			ApplicationID:      applicationID,
			RequiredDocumentID: reqID,
			FileName:           stored,
			UploadedAt:         s.Now(),
		}); err != nil {
			return err
		}

		doc, err = s.Repo.FindDocument(tx, applicationID, reqID)
		return err
	})
	if err != nil {
		if derr := s.Storage.Delete(stored); derr != nil {
			config.Logger.Warn("Failed to remove orphaned upload", zap.String("file", stored), zap.Error(derr))
		}
		return nil, err
	}

	if previous != "" && previous != stored {
		if err := s.Storage.Delete(previous); err != nil {
			config.Logger.Warn("Failed to remove replaced upload", zap.String("file", previous), zap.Error(err))
		}
	}

	metrics.RecordSubmission(string(models.ApplicationDocumentEntity))
	config.Logger.Info("Document uploaded",
		zap.String("application_id", applicationID.String()),
		zap.String("req_id", reqID.String()),
		zap.String("file", stored),
		zap.Bool("replaced", previous != ""),
	)
	return doc, nil
}

// Decide approves or rejects a Pending document. Only the mentor assigned to
// the application's program may do so.
func (s *DocumentService) Decide(ctx context.Context, principal models.Principal, applicationID, reqID uuid.UUID, decision models.Decision) (*models.ApplicationDocument, error) {
	if !principal.Is(models.MentorRole) {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	var doc *models.ApplicationDocument
	var application *models.Application
	var requirement *models.RequiredDocument
	status := decision.Status()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		application, err = s.Repo.GetApplication(tx, applicationID)
		if err != nil {
			return err
		}
		program, err := s.Repo.GetProgram(tx, application.ProgramID)
		if err != nil {
			return err
		}
		if !program.SupervisedBy(principal) {
			return apperrors.Forbidden("Unauthorized")
		}

		doc, err = s.Repo.LockDocument(tx, applicationID, reqID)
		if err != nil {
			return err
		}
		if doc.Status.IsTerminal() {
			return fmt.Errorf("document is %s: %w", doc.Status, apperrors.ErrAlreadyDecided)
		}
		requirement, err = s.Repo.GetRequirement(tx, reqID)
		if err != nil {
			return err
		}

		if err := s.Repo.UpdateStatus(tx, doc.ID, status); err != nil {
			return err
		}
		doc.Status = status

		return audit.Record(tx, principal, audit.Entry{
			Entity:   models.ApplicationDocumentEntity,
			EntityID: doc.ID,
			Decision: decision,
			Outcome:  string(status),
			Details: map[string]interface{}{
				"application_id": applicationID.String(),
				"req_id":         reqID.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(string(models.ApplicationDocumentEntity), string(status))
	config.Logger.Info("Document decided",
		zap.String("document_id", doc.ID.String()),
		zap.String("application_id", applicationID.String()),
		zap.String("status", string(status)),
		zap.String("actor_id", principal.UserID.String()),
	)
	notifications.Dispatch(ctx, s.Notifier, notifications.DecisionEvent{
		Entity:      models.ApplicationDocumentEntity,
		EntityID:    doc.ID,
		Decision:    decision,
		Outcome:     string(status),
		Status:      status,
		RecipientID: application.StudentID,
		Summary:     fmt.Sprintf("Your %s was %s", requirement.DocumentName, status),
		ActorRole:   principal.Role,
		OccurredAt:  s.Now(),
	})
	return doc, nil
}

// authorizeView lets the owning student, the supervising mentor and any
// admin read an application's documents.
func (s *DocumentService) authorizeView(principal models.Principal, applicationID uuid.UUID) (*models.Application, error) {
	application, err := s.Repo.GetApplication(nil, applicationID)
	if err != nil {
		return nil, err
	}
	switch principal.Role {
	case models.AdminRole:
		return application, nil
	case models.StudentRole:
		if application.StudentID == principal.UserID {
			return application, nil
		}
	case models.MentorRole:
		program, err := s.Repo.GetProgram(nil, application.ProgramID)
		if err != nil {
			return nil, err
		}
		if program.SupervisedBy(principal) {
			return application, nil
		}
	}
	return nil, apperrors.Forbidden("Unauthorized")
}

// Requirements lists every document the application's program requires
// with the upload status of each.
func (s *DocumentService) Requirements(principal models.Principal, applicationID uuid.UUID) ([]repositories.RequirementStatus, error) {
	application, err := s.authorizeView(principal, applicationID)
	if err != nil {
		return nil, err
	}
	return s.Repo.Requirements(application.ID, application.ProgramID)
}

// Open returns the stored bytes of an uploaded document.
func (s *DocumentService) Open(principal models.Principal, applicationID, reqID uuid.UUID) (io.ReadCloser, string, error) {
	if _, err := s.authorizeView(principal, applicationID); err != nil {
		return nil, "", err
	}
	doc, err := s.Repo.FindDocument(nil, applicationID, reqID)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.Storage.Open(doc.FileName)
	if err != nil {
		return nil, "", err
	}
	return rc, doc.FileName, nil
}

func (s *DocumentService) PendingForMentor(principal models.Principal) ([]models.ApplicationDocument, error) {
	if !principal.Is(models.MentorRole) {
		return nil, apperrors.Forbidden("Unauthorized")
	}
	return s.Repo.PendingForMentor(principal.UserID)
}
