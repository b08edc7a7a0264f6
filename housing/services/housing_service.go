package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/housing/repositories"
	"study-abroad-backend/internal/audit"
	"study-abroad-backend/internal/metrics"
	"study-abroad-backend/notifications"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Outcome is the result of a housing decision, recorded in the audit log and
// the decision metrics.
type Outcome string

const (
	OutcomeAssigned           Outcome = "Assigned"
	OutcomeVacated            Outcome = "Vacated"
	OutcomeRejected           Outcome = "Rejected"
	OutcomeNoCapacity         Outcome = "NoCapacity"
	OutcomeAlreadyHoused      Outcome = "AlreadyHoused"
	OutcomeNoActiveAssignment Outcome = "NoActiveAssignment"
	OutcomeAlreadyDecided     Outcome = "AlreadyDecided"
	OutcomeNotFound           Outcome = "NotFound"
)

// DecisionResult describes what a housing decision did. Assignment is set
// for Assigned and Vacated outcomes.
type DecisionResult struct {
	Outcome    Outcome                   `json:"outcome"`
	Request    *models.HousingRequest    `json:"request"`
	Assignment *models.HousingAssignment `json:"assignment,omitempty"`
}

// StudentHousing is what a student sees on the housing page.
type StudentHousing struct {
	Requests   []models.HousingRequest   `json:"requests"`
	Assignment *models.HousingAssignment `json:"assignment"`
}

type HousingService struct {
	DB       *gorm.DB
	Repo     repositories.HousingRepository
	Notifier notifications.Notifier
	Now      func() time.Time
}

func NewHousingService(db *gorm.DB, repo repositories.HousingRepository, notifier notifications.Notifier) *HousingService {
	return &HousingService{DB: db, Repo: repo, Notifier: notifier, Now: time.Now}
}

// Request files an apply or vacate request. A student holds at most one
// Pending request of each type; asking again returns it.
func (s *HousingService) Request(ctx context.Context, principal models.Principal, kind models.HousingRequestType) (*models.HousingRequest, bool, error) {
	if !principal.Is(models.StudentRole) {
		return nil, false, apperrors.Forbidden("only students can request housing")
	}
	if !kind.Valid() {
		return nil, false, apperrors.NewValidationError("request_type must be one of: apply, vacate")
	}

	var req *models.HousingRequest
	created := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.Repo.FindPending(tx, principal.UserID, kind)
		if err == nil {
			req = existing
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		req = &models.HousingRequest{
			StudentID:   principal.UserID,
			RequestType: kind,
			Status:      models.StatusPending,
			RequestDate: s.Now(),
		}
		created = true
		return s.Repo.CreateRequest(tx, req)
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		metrics.RecordSubmission(string(models.HousingRequestEntity))
		config.Logger.Info("Housing request submitted",
			zap.String("request_id", req.ID.String()),
			zap.String("student_id", principal.UserID.String()),
			zap.String("request_type", string(kind)),
		)
	}
	return req, created, nil
}

// Decide settles a housing request in a single transaction. Approving an
// apply request claims the oldest free unit; approving a vacate request
// closes the student's active assignment and frees the unit. When the
// approval cannot be honoured the request is rejected with an outcome that
// says why.
func (s *HousingService) Decide(ctx context.Context, principal models.Principal, requestID uuid.UUID, decision models.Decision) (*DecisionResult, error) {
	if !principal.Is(models.AdminRole) {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	var result *DecisionResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.Repo.LockRequest(tx, requestID)
		if err != nil {
			return err
		}
		if req.Status.IsTerminal() {
			return fmt.Errorf("housing request is %s: %w", req.Status, apperrors.ErrAlreadyDecided)
		}

		result = &DecisionResult{Request: req}
		switch {
		case decision == models.DecisionReject:
			result.Outcome = OutcomeRejected
		case req.RequestType == models.HousingApply:
			result.Outcome, result.Assignment, err = s.allocate(tx, req.StudentID)
		case req.RequestType == models.HousingVacate:
			result.Outcome, result.Assignment, err = s.vacate(tx, req.StudentID)
		default:
			return apperrors.NewValidationError("unknown request type %q", req.RequestType)
		}
		if err != nil {
			return err
		}

		status := models.StatusRejected
		if result.Outcome == OutcomeAssigned || result.Outcome == OutcomeVacated {
			status = models.StatusApproved
		}
		if err := s.Repo.UpdateRequestStatus(tx, req.ID, status); err != nil {
			return err
		}
		req.Status = status

		details := map[string]interface{}{"request_type": string(req.RequestType)}
		if result.Assignment != nil {
			details["housing_id"] = result.Assignment.HousingID.String()
			details["assignment_id"] = result.Assignment.ID.String()
		}
		return audit.Record(tx, principal, audit.Entry{
			Entity:   models.HousingRequestEntity,
			EntityID: req.ID,
			Decision: decision,
			Outcome:  string(result.Outcome),
			Details:  details,
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadyDecided):
			metrics.RecordDecision(string(models.HousingRequestEntity), string(OutcomeAlreadyDecided))
		case errors.Is(err, apperrors.ErrNotFound):
			metrics.RecordDecision(string(models.HousingRequestEntity), string(OutcomeNotFound))
		}
		return nil, err
	}

	metrics.RecordDecision(string(models.HousingRequestEntity), string(result.Outcome))
	config.Logger.Info("Housing request decided",
		zap.String("request_id", result.Request.ID.String()),
		zap.String("request_type", string(result.Request.RequestType)),
		zap.String("outcome", string(result.Outcome)),
		zap.String("actor_id", principal.UserID.String()),
	)
	notifications.Dispatch(ctx, s.Notifier, notifications.DecisionEvent{
		Entity:      models.HousingRequestEntity,
		EntityID:    result.Request.ID,
		Decision:    decision,
		Outcome:     string(result.Outcome),
		Status:      result.Request.Status,
		RecipientID: result.Request.StudentID,
		Summary:     housingSummary(result),
		ActorRole:   principal.Role,
		OccurredAt:  s.Now(),
	})
	return result, nil
}

func (s *HousingService) allocate(tx *gorm.DB, studentID uuid.UUID) (Outcome, *models.HousingAssignment, error) {
	if _, err := s.Repo.ActiveAssignment(tx, studentID, false); err == nil {
		return OutcomeAlreadyHoused, nil, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return "", nil, err
	}

	housing, err := s.Repo.NextAvailable(tx)
	if err != nil {
		return "", nil, err
	}
	if housing == nil {
		return OutcomeNoCapacity, nil, nil
	}

	claimed, err := s.Repo.Claim(tx, housing.ID)
	if err != nil {
		return "", nil, err
	}
	if !claimed {
		return "", nil, fmt.Errorf("housing %s was claimed concurrently", housing.ID)
	}

	assignment := &models.HousingAssignment{
		StudentID:     studentID,
		HousingID:     housing.ID,
		AllotmentDate: utils.Today(s.Now()),
	}
	if err := s.Repo.CreateAssignment(tx, assignment); err != nil {
		return "", nil, err
	}
	assignment.Housing = housing
	return OutcomeAssigned, assignment, nil
}

func (s *HousingService) vacate(tx *gorm.DB, studentID uuid.UUID) (Outcome, *models.HousingAssignment, error) {
	assignment, err := s.Repo.ActiveAssignment(tx, studentID, true)
	if errors.Is(err, apperrors.ErrNotFound) {
		return OutcomeNoActiveAssignment, nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	today := utils.Today(s.Now())
	if err := s.Repo.Checkout(tx, assignment.ID, today); err != nil {
		return "", nil, err
	}
	if err := s.Repo.Release(tx, assignment.HousingID); err != nil {
		return "", nil, err
	}
	assignment.CheckoutDate = &today
	return OutcomeVacated, assignment, nil
}

func housingSummary(result *DecisionResult) string {
	switch result.Outcome {
	case OutcomeAssigned:
		return "Your housing application was approved and a room has been allotted"
	case OutcomeVacated:
		return "Your request to vacate housing was approved"
	case OutcomeNoCapacity:
		return "Your housing application was rejected: no rooms are currently available"
	case OutcomeAlreadyHoused:
		return "Your housing application was rejected: you already have a room"
	case OutcomeNoActiveAssignment:
		return "Your vacate request was rejected: you have no active room"
	}
	return fmt.Sprintf("Your %s housing request was %s", result.Request.RequestType, result.Request.Status)
}

// Assign allots a specific unit to a student without a request. The same
// guards apply as for an approved apply request.
func (s *HousingService) Assign(ctx context.Context, principal models.Principal, studentID, housingID uuid.UUID) (*models.HousingAssignment, error) {
	if !principal.Is(models.AdminRole) {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	var assignment *models.HousingAssignment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.StudentExists(tx, studentID); err != nil {
			return err
		}
		if _, err := s.Repo.ActiveAssignment(tx, studentID, false); err == nil {
			return apperrors.Conflict("student already has an active housing assignment")
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		housing, err := s.Repo.LockHousing(tx, housingID)
		if err != nil {
			return err
		}
		claimed, err := s.Repo.Claim(tx, housing.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return apperrors.Conflict("housing is not available")
		}

		assignment = &models.HousingAssignment{
			StudentID:     studentID,
			HousingID:     housing.ID,
			AllotmentDate: utils.Today(s.Now()),
		}
		if err := s.Repo.CreateAssignment(tx, assignment); err != nil {
			return err
		}
		assignment.Housing = housing

		return audit.Record(tx, principal, audit.Entry{
			Entity:   models.HousingAssignmentEntity,
			EntityID: assignment.ID,
			Decision: models.DecisionApprove,
			Outcome:  string(OutcomeAssigned),
			Details:  map[string]interface{}{"housing_id": housing.ID.String(), "direct": true},
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(string(models.HousingAssignmentEntity), string(OutcomeAssigned))
	config.Logger.Info("Housing assigned directly",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.String("housing_id", housingID.String()),
	)
	notifications.Dispatch(ctx, s.Notifier, notifications.DecisionEvent{
		Entity:      models.HousingAssignmentEntity,
		EntityID:    assignment.ID,
		Decision:    models.DecisionApprove,
		Outcome:     string(OutcomeAssigned),
		Status:      models.StatusApproved,
		RecipientID: studentID,
		Summary:     "A room has been allotted to you",
		ActorRole:   principal.Role,
		OccurredAt:  s.Now(),
	})
	return assignment, nil
}

// ForStudent returns the caller's requests and current assignment.
func (s *HousingService) ForStudent(principal models.Principal) (*StudentHousing, error) {
	if !principal.Is(models.StudentRole) {
		return nil, apperrors.Forbidden("only students have housing")
	}
	reqs, err := s.Repo.RequestsForStudent(principal.UserID)
	if err != nil {
		return nil, err
	}
	assignment, err := s.Repo.CurrentAssignment(principal.UserID)
	if err != nil {
		return nil, err
	}
	return &StudentHousing{Requests: reqs, Assignment: assignment}, nil
}

// CurrentAssignment returns the active assignment of any student, nil when
// the student is not housed.
func (s *HousingService) CurrentAssignment(studentID uuid.UUID) (*models.HousingAssignment, error) {
	return s.Repo.CurrentAssignment(studentID)
}

func (s *HousingService) PendingRequests() ([]models.HousingRequest, error) {
	return s.Repo.PendingRequests()
}

func (s *HousingService) Occupancy() ([]repositories.OccupancyRow, error) {
	return s.Repo.Occupancy()
}
