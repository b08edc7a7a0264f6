package services

import (
	"context"
	"fmt"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/internal/audit"
	"study-abroad-backend/internal/metrics"
	"study-abroad-backend/notifications"
	"study-abroad-backend/scholarships/repositories"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ScholarshipService struct {
	DB       *gorm.DB
	Repo     repositories.ScholarshipRepository
	Notifier notifications.Notifier
	Now      func() time.Time
}

func NewScholarshipService(db *gorm.DB, repo repositories.ScholarshipRepository, notifier notifications.Notifier) *ScholarshipService {
	return &ScholarshipService{DB: db, Repo: repo, Notifier: notifier, Now: time.Now}
}

// Apply requests a scholarship of the program an application targets.
// Applying twice returns the first request.
func (s *ScholarshipService) Apply(ctx context.Context, principal models.Principal, applicationID, scholarshipID uuid.UUID) (*models.ScholarshipApplication, bool, error) {
	if !principal.Is(models.StudentRole) {
		return nil, false, apperrors.Forbidden("only students can apply for scholarships")
	}

	var schApp *models.ScholarshipApplication
	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, err := s.Repo.GetApplication(tx, applicationID)
		if err != nil {
			return err
		}
		if application.StudentID != principal.UserID {
			return apperrors.Forbidden("Unauthorized")
		}
		scholarship, err := s.Repo.GetScholarship(tx, scholarshipID)
		if err != nil {
			return err
		}
		if scholarship.ProgramID != application.ProgramID {
			return apperrors.NewValidationError("scholarship %q is not offered by this program", scholarship.Name)
		}

		created, err = s.Repo.InsertIfAbsent(tx, &models.ScholarshipApplication{
			ApplicationID: applicationID,
			ScholarshipID: scholarshipID,
			Status:        models.StatusPending,
		})
		if err != nil {
			return err
		}
		schApp, err = s.Repo.FindByPair(tx, applicationID, scholarshipID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		metrics.RecordSubmission(string(models.ScholarshipApplicationEntity))
		config.Logger.Info("Scholarship application submitted",
			zap.String("scholarship_application_id", schApp.ID.String()),
			zap.String("application_id", applicationID.String()),
			zap.String("scholarship_id", scholarshipID.String()),
		)
	}
	return schApp, created, nil
}

// Decide settles a Pending scholarship application. Approval flags the
// parent application as awarded; the amount is informational only.
func (s *ScholarshipService) Decide(ctx context.Context, principal models.Principal, schAppID uuid.UUID, decision models.Decision) (*models.ScholarshipApplication, error) {
	if !principal.Is(models.AdminRole) && !principal.Is(models.MentorRole) {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	var schApp *models.ScholarshipApplication
	var application *models.Application
	var scholarship *models.Scholarship
	status := decision.Status()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		schApp, err = s.Repo.LockScholarshipApplication(tx, schAppID)
		if err != nil {
			return err
		}
		application, err = s.Repo.GetApplication(tx, schApp.ApplicationID)
		if err != nil {
			return err
		}
		program, err := s.Repo.GetProgram(tx, application.ProgramID)
		if err != nil {
			return err
		}
		if !program.ReviewableBy(principal) {
			return apperrors.Forbidden("Unauthorized")
		}
		if schApp.Status.IsTerminal() {
			return fmt.Errorf("scholarship application is %s: %w", schApp.Status, apperrors.ErrAlreadyDecided)
		}
		scholarship, err = s.Repo.GetScholarship(tx, schApp.ScholarshipID)
		if err != nil {
			return err
		}

		if err := s.Repo.UpdateStatus(tx, schApp.ID, status); err != nil {
			return err
		}
		schApp.Status = status
		if status == models.StatusApproved {
			if err := s.Repo.MarkAwarded(tx, application.ID); err != nil {
				return err
			}
		}

		return audit.Record(tx, principal, audit.Entry{
			Entity:   models.ScholarshipApplicationEntity,
			EntityID: schApp.ID,
			Decision: decision,
			Outcome:  string(status),
			Details: map[string]interface{}{
				"application_id": application.ID.String(),
				"scholarship_id": scholarship.ID.String(),
				"amount":         scholarship.Amount.StringFixed(2),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(string(models.ScholarshipApplicationEntity), string(status))
	config.Logger.Info("Scholarship application decided",
		zap.String("scholarship_application_id", schApp.ID.String()),
		zap.String("status", string(status)),
		zap.String("actor_id", principal.UserID.String()),
		zap.String("role", string(principal.Role)),
	)
	notifications.Dispatch(ctx, s.Notifier, notifications.DecisionEvent{
		Entity:      models.ScholarshipApplicationEntity,
		EntityID:    schApp.ID,
		Decision:    decision,
		Outcome:     string(status),
		Status:      status,
		RecipientID: application.StudentID,
		Summary:     fmt.Sprintf("Your application for the %s scholarship was %s", scholarship.Name, status),
		ActorRole:   principal.Role,
		OccurredAt:  s.Now(),
	})
	return schApp, nil
}

// AvailableFor lists the scholarships of the program an application targets.
func (s *ScholarshipService) AvailableFor(principal models.Principal, applicationID uuid.UUID) ([]models.Scholarship, error) {
	application, err := s.Repo.GetApplication(nil, applicationID)
	if err != nil {
		return nil, err
	}
	switch principal.Role {
	case models.AdminRole:
	case models.StudentRole:
		if application.StudentID != principal.UserID {
			return nil, apperrors.Forbidden("Unauthorized")
		}
	case models.MentorRole:
		program, err := s.Repo.GetProgram(nil, application.ProgramID)
		if err != nil {
			return nil, err
		}
		if !program.SupervisedBy(principal) {
			return nil, apperrors.Forbidden("Unauthorized")
		}
	default:
		return nil, apperrors.Forbidden("Unauthorized")
	}
	return s.Repo.ForProgram(application.ProgramID)
}

// List returns a student's own scholarship applications, a mentor's review
// queue, or everything for an admin.
func (s *ScholarshipService) List(principal models.Principal, status string) ([]repositories.ScholarshipApplicationView, error) {
	filter := models.ReviewStatus(status)
	if status != "" && !filter.Valid() {
		return nil, apperrors.NewValidationError("status must be one of: Pending, Approved, Rejected")
	}

	id := principal.UserID
	switch principal.Role {
	case models.StudentRole:
		return s.Repo.List(&id, nil, filter)
	case models.MentorRole:
		return s.Repo.List(nil, &id, filter)
	case models.AdminRole:
		return s.Repo.List(nil, nil, filter)
	}
	return nil, apperrors.Forbidden("Unauthorized")
}
