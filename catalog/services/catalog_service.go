package services

import (
	"context"
	"strings"
	"time"

	authrepos "study-abroad-backend/auth/repositories"
	authservices "study-abroad-backend/auth/services"
	"study-abroad-backend/catalog/repositories"
	"study-abroad-backend/catalog/requests"
	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/search"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService manages the reference data every workflow reads:
// universities, mentors, programs and their requirements, scholarships and
// housing inventory.
type CatalogService struct {
	DB       *gorm.DB
	Repo     repositories.CatalogRepository
	Accounts authrepos.AccountRepository
	Index    search.ProgramIndex
	Redis    *redis.Client
	Now      func() time.Time
}

func NewCatalogService(db *gorm.DB, repo repositories.CatalogRepository, accounts authrepos.AccountRepository, index search.ProgramIndex, rdb *redis.Client) *CatalogService {
	return &CatalogService{DB: db, Repo: repo, Accounts: accounts, Index: index, Redis: rdb, Now: time.Now}
}

func (s *CatalogService) invalidateDashboards() {
	utils.InvalidateCacheAsync(s.Redis, DashboardCacheResource)
}

func optionalUUID(field, raw string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := utils.ParseUUIDValue(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperrors.NewValidationError("%s must be a number", field)
	}
	if amount.IsNegative() {
		return decimal.Zero, apperrors.NewValidationError("%s must not be negative", field)
	}
	return amount, nil
}

func (s *CatalogService) CreateUniversity(req requests.CreateUniversityRequest) (*models.University, error) {
	university := &models.University{
		Name:    strings.TrimSpace(req.Name),
		Country: strings.TrimSpace(req.Country),
		Ranking: req.Ranking,
	}
	if email := strings.ToLower(strings.TrimSpace(req.ContactEmail)); email != "" {
		university.ContactEmail = &email
	}
	if err := s.Repo.CreateUniversity(nil, university); err != nil {
		return nil, err
	}

	s.invalidateDashboards()
	config.Logger.Info("University created", zap.String("university_id", university.ID.String()), zap.String("name", university.Name))
	return university, nil
}

func (s *CatalogService) ListUniversities(params pagination.PaginationParams) ([]models.University, int64, error) {
	return s.Repo.ListUniversities(params)
}

// DeleteUniversity removes the university with its programs and housing.
func (s *CatalogService) DeleteUniversity(ctx context.Context, id uuid.UUID) error {
	programIDs, err := s.Repo.ProgramIDsBy("university_id", id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteUniversity(id); err != nil {
		return err
	}

	for _, programID := range programIDs {
		s.unindexProgram(ctx, programID)
	}
	s.invalidateDashboards()
	config.Logger.Info("University deleted", zap.String("university_id", id.String()), zap.Int("programs_removed", len(programIDs)))
	return nil
}

func (s *CatalogService) CreateMentor(req requests.CreateMentorRequest) (*models.Mentor, error) {
	if reason := authservices.ValidatePassword(req.Password); reason != "" {
		return nil, apperrors.NewValidationError("%s", reason)
	}
	universityID, err := optionalUUID("university_id", req.UniversityID)
	if err != nil {
		return nil, err
	}
	hashed, err := authservices.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	mentor := &models.Mentor{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Password:     hashed,
		Department:   strings.TrimSpace(req.Department),
		UniversityID: universityID,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if universityID != nil {
			if _, err := s.Repo.GetUniversity(tx, *universityID); err != nil {
				return err
			}
		}
		inUse, err := s.Accounts.EmailInUse(tx, mentor.Email)
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.Conflict("email already registered")
		}
		return s.Repo.CreateMentor(tx, mentor)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDashboards()
	config.Logger.Info("Mentor created", zap.String("mentor_id", mentor.ID.String()))
	return mentor, nil
}

func (s *CatalogService) ListMentors(params pagination.PaginationParams) ([]repositories.MentorView, int64, error) {
	return s.Repo.ListMentors(params)
}

// DeleteMentor removes the mentor. Their programs stay in the catalog
// without a supervisor.
func (s *CatalogService) DeleteMentor(ctx context.Context, id uuid.UUID) error {
	programIDs, err := s.Repo.ProgramIDsBy("mentor_id", id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteMentor(id); err != nil {
		return err
	}

	for _, programID := range programIDs {
		s.indexProgram(ctx, programID)
	}
	s.invalidateDashboards()
	config.Logger.Info("Mentor deleted", zap.String("mentor_id", id.String()), zap.Int("programs_unassigned", len(programIDs)))
	return nil
}

func (s *CatalogService) ListStudents(params pagination.PaginationParams) ([]models.Student, int64, error) {
	return s.Repo.ListStudents(params)
}

func (s *CatalogService) DeleteStudent(id uuid.UUID) error {
	if err := s.Repo.DeleteStudent(id); err != nil {
		return err
	}
	s.invalidateDashboards()
	config.Logger.Info("Student deleted", zap.String("student_id", id.String()))
	return nil
}

func (s *CatalogService) CreateScholarship(req requests.CreateScholarshipRequest) (*models.Scholarship, error) {
	programID, err := utils.ParseUUIDValue("program_id", req.ProgramID)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetProgram(programID); err != nil {
		return nil, err
	}

	scholarship := &models.Scholarship{
		ProgramID:           programID,
		Name:                strings.TrimSpace(req.Name),
		Amount:              amount,
		EligibilityCriteria: strings.TrimSpace(req.EligibilityCriteria),
	}
	if err := s.Repo.CreateScholarship(nil, scholarship); err != nil {
		return nil, err
	}

	s.invalidateDashboards()
	config.Logger.Info("Scholarship created",
		zap.String("scholarship_id", scholarship.ID.String()),
		zap.String("program_id", programID.String()),
		zap.String("amount", amount.StringFixed(2)),
	)
	return scholarship, nil
}

func (s *CatalogService) ListScholarships(params pagination.PaginationParams) ([]repositories.ScholarshipView, int64, error) {
	return s.Repo.ListScholarships(params)
}

func (s *CatalogService) DeleteScholarship(id uuid.UUID) error {
	if err := s.Repo.DeleteScholarship(id); err != nil {
		return err
	}
	s.invalidateDashboards()
	return nil
}

func (s *CatalogService) CreateHousing(req requests.CreateHousingRequest) (*models.Housing, error) {
	universityID, err := utils.ParseUUIDValue("university_id", req.UniversityID)
	if err != nil {
		return nil, err
	}
	rent, err := parseAmount("rent", req.Rent)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetUniversity(nil, universityID); err != nil {
		return nil, err
	}

	housing := &models.Housing{
		UniversityID: universityID,
		Location:     strings.TrimSpace(req.Location),
		RoomType:     strings.TrimSpace(req.RoomType),
		Rent:         rent,
		Availability: true,
	}
	if err := s.Repo.CreateHousing(nil, housing); err != nil {
		return nil, err
	}

	s.invalidateDashboards()
	config.Logger.Info("Housing listing created", zap.String("housing_id", housing.ID.String()))
	return housing, nil
}

func (s *CatalogService) ListHousing(params pagination.PaginationParams) ([]repositories.HousingView, int64, error) {
	return s.Repo.ListHousing(params)
}

// DeleteHousing refuses to remove a room that is currently occupied.
func (s *CatalogService) DeleteHousing(id uuid.UUID) error {
	housing, err := s.Repo.GetHousing(id)
	if err != nil {
		return err
	}
	if !housing.Availability {
		return apperrors.Conflict("housing is currently occupied")
	}
	if err := s.Repo.DeleteHousing(id); err != nil {
		return err
	}
	s.invalidateDashboards()
	config.Logger.Info("Housing listing deleted", zap.String("housing_id", id.String()))
	return nil
}
