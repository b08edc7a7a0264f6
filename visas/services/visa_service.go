package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/internal/audit"
	"study-abroad-backend/internal/metrics"
	"study-abroad-backend/notifications"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"
	"study-abroad-backend/visas/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// DefaultReminderDays is used when VISA_REMINDER_DAYS is unset.
const DefaultReminderDays = 30

type VisaService struct {
	DB       *gorm.DB
	Repo     repositories.VisaRepository
	Notifier notifications.Notifier
	Now      func() time.Time
}

func NewVisaService(db *gorm.DB, repo repositories.VisaRepository, notifier notifications.Notifier) *VisaService {
	return &VisaService{DB: db, Repo: repo, Notifier: notifier, Now: time.Now}
}

// NormalizeCountry trims a country name and collapses inner whitespace.
// Spelling and case are left as given.
func NormalizeCountry(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// countryKey is the case-folded form used to compare country names.
func countryKey(raw string) string {
	return cases.Fold().String(NormalizeCountry(raw))
}

// EligibleCountries lists the countries a student can request a visa for,
// spelled as in the university catalog.
func (s *VisaService) EligibleCountries() ([]string, error) {
	countries, err := s.Repo.EligibleCountries()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(countries))
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		n := NormalizeCountry(c)
		key := countryKey(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out, nil
}

// matchCountry returns the catalog spelling of raw, or "" when no eligible
// country matches it.
func (s *VisaService) matchCountry(raw string) (string, error) {
	eligible, err := s.EligibleCountries()
	if err != nil {
		return "", err
	}
	key := countryKey(raw)
	for _, c := range eligible {
		if countryKey(c) == key {
			return c, nil
		}
	}
	return "", nil
}

// Request files a new Pending visa for the calling student. Earlier visas
// are kept; the newest is the current one.
func (s *VisaService) Request(ctx context.Context, principal models.Principal, country string) (*models.VisaPermit, error) {
	if !principal.Is(models.StudentRole) {
		return nil, apperrors.Forbidden("only students can request visas")
	}

	requested := NormalizeCountry(country)
	if requested == "" {
		return nil, apperrors.NewValidationError("country is required")
	}
	matched, err := s.matchCountry(requested)
	if err != nil {
		return nil, err
	}
	if matched == "" {
		return nil, apperrors.NewValidationError("visa requests are not accepted for %s", requested)
	}

	visa := &models.VisaPermit{
		StudentID:         principal.UserID,
		Country:           matched,
		ApplicationStatus: models.StatusPending,
	}
	if err := s.Repo.Create(s.DB.WithContext(ctx), visa); err != nil {
		return nil, err
	}

	metrics.RecordSubmission(string(models.VisaPermitEntity))
	config.Logger.Info("Visa requested",
		zap.String("visa_id", visa.ID.String()),
		zap.String("student_id", principal.UserID.String()),
		zap.String("country", matched),
	)
	return visa, nil
}

// Decide settles a Pending visa. Approval issues it today with a fixed
// validity of models.VisaValidityDays.
func (s *VisaService) Decide(ctx context.Context, principal models.Principal, visaID uuid.UUID, decision models.Decision) (*models.VisaPermit, error) {
	if !principal.Is(models.AdminRole) {
		return nil, apperrors.Forbidden("Unauthorized")
	}

	var visa *models.VisaPermit
	status := decision.Status()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		visa, err = s.Repo.Lock(tx, visaID)
		if err != nil {
			return err
		}
		if visa.ApplicationStatus.IsTerminal() {
			return fmt.Errorf("visa is %s: %w", visa.ApplicationStatus, apperrors.ErrAlreadyDecided)
		}

		visa.ApplicationStatus = status
		details := map[string]interface{}{"country": visa.Country}
		if status == models.StatusApproved {
			issued := utils.Today(s.Now())
			expiry := utils.AddDays(issued, models.VisaValidityDays)
			visa.IssuedDate = &issued
			visa.ExpiryDate = &expiry
			details["expiry_date"] = utils.FormatDate(&expiry)
		}
		if err := s.Repo.Save(tx, visa); err != nil {
			return err
		}

		return audit.Record(tx, principal, audit.Entry{
			Entity:   models.VisaPermitEntity,
			EntityID: visa.ID,
			Decision: decision,
			Outcome:  string(status),
			Details:  details,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordDecision(string(models.VisaPermitEntity), string(status))
	config.Logger.Info("Visa decided",
		zap.String("visa_id", visa.ID.String()),
		zap.String("status", string(status)),
		zap.String("expiry_date", utils.FormatDate(visa.ExpiryDate)),
	)
	notifications.Dispatch(ctx, s.Notifier, notifications.DecisionEvent{
		Entity:      models.VisaPermitEntity,
		EntityID:    visa.ID,
		Decision:    decision,
		Outcome:     string(status),
		Status:      status,
		RecipientID: visa.StudentID,
		Summary:     fmt.Sprintf("Your visa request for %s was %s", visa.Country, status),
		ActorRole:   principal.Role,
		OccurredAt:  s.Now(),
	})
	return visa, nil
}

// History lists the caller's visas, newest first.
func (s *VisaService) History(principal models.Principal) ([]models.VisaPermit, error) {
	if !principal.Is(models.StudentRole) {
		return nil, apperrors.Forbidden("only students have visas")
	}
	return s.Repo.ForStudent(principal.UserID)
}

// Get returns one visa to its owner or an admin.
func (s *VisaService) Get(principal models.Principal, visaID uuid.UUID) (*models.VisaPermit, error) {
	visa, err := s.Repo.Get(nil, visaID)
	if err != nil {
		return nil, err
	}
	if principal.Is(models.AdminRole) || (principal.Is(models.StudentRole) && visa.StudentID == principal.UserID) {
		return visa, nil
	}
	return nil, apperrors.Forbidden("Unauthorized")
}

func (s *VisaService) List(status string, params pagination.PaginationParams) ([]models.VisaPermit, int64, error) {
	filter := models.ReviewStatus(status)
	if status != "" && !filter.Valid() {
		return nil, 0, apperrors.NewValidationError("status must be one of: Pending, Approved, Rejected")
	}
	return s.Repo.List(filter, params)
}

// SendExpiryReminders notifies students whose approved visa expires within
// the next days. It returns how many reminders were handed to the notifier.
func (s *VisaService) SendExpiryReminders(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = DefaultReminderDays
	}
	today := utils.Today(s.Now())
	visas, err := s.Repo.ExpiringBetween(today, utils.AddDays(today, days))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, visa := range visas {
		daysLeft := utils.DaysBetween(today, *visa.ExpiryDate)
		err := s.Notifier.VisaExpiring(ctx, notifications.VisaExpiryEvent{
			VisaID:      visa.ID,
			RecipientID: visa.StudentID,
			Country:     visa.Country,
			ExpiryDate:  utils.FormatDate(visa.ExpiryDate),
			DaysLeft:    daysLeft,
		})
		if err != nil {
			metrics.NotificationFailures.Inc()
			config.Logger.Warn("Failed to enqueue visa expiry reminder",
				zap.String("visa_id", visa.ID.String()),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	config.Logger.Info("Visa expiry reminders processed",
		zap.Int("candidates", len(visas)),
		zap.Int("sent", sent),
		zap.Int("window_days", days),
	)
	return sent, nil
}
