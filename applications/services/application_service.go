package services

import (
	"context"
	"fmt"
	"time"

	"study-abroad-backend/applications/repositories"
	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/internal/audit"
	"study-abroad-backend/internal/metrics"
	"study-abroad-backend/notifications"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ApplicationService struct {
	DB       *gorm.DB
	Repo     repositories.ApplicationRepository
	Notifier notifications.Notifier
	Now      func() time.Time
}

func NewApplicationService(db *gorm.DB, repo repositories.ApplicationRepository, notifier notifications.Notifier) *ApplicationService {
	return &ApplicationService{DB: db, Repo: repo, Notifier: notifier, Now: time.Now}
}

// Submit files an application for the calling student. Submitting again for
// the same program returns the existing row unchanged; created reports
// whether a new row was written.
func (s *ApplicationService) Submit(ctx context.Context, principal models.Principal, programID uuid.UUID) (*models.Application, bool, error) {
	if !principal.Is(models.StudentRole) {
		return nil, false, apperrors.Forbidden("only students can apply to programs")
	}

	var application *models.Application
	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Repo.GetProgram(tx, programID); err != nil {
			return err
		}

		candidate := &models.Application{
			StudentID:   principal.UserID,
			ProgramID:   programID,
			Status:      models.StatusPending,
			AppliedDate: s.Now(),
		}
		inserted, err := s.Repo.InsertIfAbsent(tx, candidate)
		if err != nil {
			return err
		}
		created = inserted

		application, err = s.Repo.FindByStudentProgram(tx, principal.UserID, programID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		metrics.RecordSubmission(string(models.ApplicationEntity))
		config.Logger.Info("Application submitted",
			zap.String("application_id", application.ID.String()),
			zap.String("student_id", principal.UserID.String()),
			zap.String("program_id", programID.String()),
		)
	}
	return application, created, nil
}

// Decide moves a Pending application to Approved or Rejected. Admins may
// decide any application, mentors only those of programs they supervise.
func (s *ApplicationService) Decide(ctx context.Context, principal models.Principal, applicationID uuid.UUID, decision models.Decision) (*models.Application, error) {
	if !principal.Is(models.AdminRole) && !principal.Is(models.MentorRole) {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	var application *models.Application
	var program *models.Program
	status := decision.Status()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		application, err = s.Repo.LockApplication(tx, applicationID)
		if err != nil {
			return err
		}
		program, err = s.Repo.GetProgram(tx, application.ProgramID)
		if err != nil {
			return err
		}
		if !program.ReviewableBy(principal) {
			return apperrors.Forbidden("Unauthorized")
		}
		if application.Status.IsTerminal() {
			return fmt.Errorf("application is %s: %w", application.Status, apperrors.ErrAlreadyDecided)
		}

		if err := s.Repo.UpdateStatus(tx, application.ID, status); err != nil {
			return err
		}
		application.Status = status

		return audit.Record(tx, principal, audit.Entry{
			Entity:   models.ApplicationEntity,
			EntityID: application.ID,
			Decision: decision,
			Outcome:  string(status),
			Details:  map[string]interface{}{"program_id": program.ID.String()},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(string(models.ApplicationEntity), string(status))
	config.Logger.Info("Application decided",
		zap.String("application_id", application.ID.String()),
		zap.String("status", string(status)),
		zap.String("actor_id", principal.UserID.String()),
		zap.String("role", string(principal.Role)),
	)
	notifications.Dispatch(ctx, s.Notifier, notifications.DecisionEvent{
		Entity:      models.ApplicationEntity,
		EntityID:    application.ID,
		Decision:    decision,
		Outcome:     string(status),
		Status:      status,
		RecipientID: application.StudentID,
		Summary:     fmt.Sprintf("Your application to %s was %s", program.Title, status),
		ActorRole:   principal.Role,
		OccurredAt:  s.Now(),
	})
	return application, nil
}

func (s *ApplicationService) ListForStudent(principal models.Principal) ([]repositories.StudentApplicationView, error) {
	if !principal.Is(models.StudentRole) {
		return nil, apperrors.Forbidden("only students have applications")
	}
	return s.Repo.ListForStudent(principal.UserID)
}

// ListForReviewer returns the review queue: a mentor sees applications to
// their own programs, an admin sees every application.
func (s *ApplicationService) ListForReviewer(principal models.Principal, status string, params pagination.PaginationParams) ([]repositories.ReviewerApplicationView, int64, error) {
	filter := models.ReviewStatus(status)
	if status != "" && !filter.Valid() {
		return nil, 0, apperrors.NewValidationError("status must be one of: Pending, Approved, Rejected")
	}

	switch principal.Role {
	case models.MentorRole:
		mentorID := principal.UserID
		return s.Repo.ListForReviewer(&mentorID, filter, params)
	case models.AdminRole:
		return s.Repo.ListForReviewer(nil, filter, params)
	}
	return nil, 0, apperrors.Forbidden("Unauthorized")
}

// History returns the decision trail of one application.
func (s *ApplicationService) History(principal models.Principal, applicationID uuid.UUID) ([]models.DecisionLog, error) {
	application, err := s.Repo.GetApplication(nil, applicationID)
	if err != nil {
		return nil, err
	}
	if principal.Is(models.StudentRole) && application.StudentID != principal.UserID {
		return nil, apperrors.Forbidden("Unauthorized")
	}
	if principal.Is(models.MentorRole) {
		program, err := s.Repo.GetProgram(nil, application.ProgramID)
		if err != nil {
			return nil, err
		}
		if !program.SupervisedBy(principal) {
			return nil, apperrors.Forbidden("Unauthorized")
		}
	}
	return audit.History(s.DB, models.ApplicationEntity, applicationID)
}
