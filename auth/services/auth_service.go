package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"study-abroad-backend/auth/repositories"
	"study-abroad-backend/auth/requests"
	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrTOTPRequired is returned by Login when an admin with a second factor
// did not supply a code.
var ErrTOTPRequired = fmt.Errorf("%w: totp code required", apperrors.ErrUnauthorized)

// TOTPVerifier is the part of TOTPService the login flow needs.
type TOTPVerifier interface {
	IsTOTPEnabled(ctx context.Context, userID string) bool
	ValidateTOTPCode(ctx context.Context, userID, code string) bool
}

type AuthService struct {
	DB   *gorm.DB
	Repo repositories.AccountRepository
	TOTP TOTPVerifier
}

func NewAuthService(db *gorm.DB, repo repositories.AccountRepository, totp TOTPVerifier) *AuthService {
	return &AuthService{DB: db, Repo: repo, TOTP: totp}
}

type credential struct {
	principal models.Principal
	hash      string
}

// Login checks students, then mentors, then admins. The first account with
// the email whose password matches wins.
func (s *AuthService) Login(ctx context.Context, req requests.LoginRequest) (models.Principal, error) {
	var candidates []credential

	if st, err := s.Repo.FindStudentByEmail(req.Email); err == nil {
		candidates = append(candidates, credential{models.Principal{UserID: st.ID, Role: models.StudentRole, Email: st.Email, Name: st.Name}, st.Password})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Principal{}, fmt.Errorf("student lookup failed: %w", err)
	}
	if m, err := s.Repo.FindMentorByEmail(req.Email); err == nil {
		candidates = append(candidates, credential{models.Principal{UserID: m.ID, Role: models.MentorRole, Email: m.Email, Name: m.Name}, m.Password})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Principal{}, fmt.Errorf("mentor lookup failed: %w", err)
	}
	if a, err := s.Repo.FindAdminByEmail(req.Email); err == nil {
		candidates = append(candidates, credential{models.Principal{UserID: a.ID, Role: models.AdminRole, Email: a.Email, Name: a.Name}, a.Password})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Principal{}, fmt.Errorf("admin lookup failed: %w", err)
	}

	for _, c := range candidates {
		if !CheckPasswordHash(req.Password, c.hash) {
			continue
		}
		if c.principal.Is(models.AdminRole) && s.TOTP != nil && s.TOTP.IsTOTPEnabled(ctx, c.principal.UserID.String()) {
			if req.TOTPCode == "" {
				return models.Principal{}, ErrTOTPRequired
			}
			if !s.TOTP.ValidateTOTPCode(ctx, c.principal.UserID.String(), req.TOTPCode) {
				return models.Principal{}, fmt.Errorf("%w: invalid totp code", apperrors.ErrUnauthorized)
			}
		}
		config.Logger.Info("Login succeeded",
			zap.String("user_id", c.principal.UserID.String()),
			zap.String("role", string(c.principal.Role)),
		)
		return c.principal, nil
	}

	config.Logger.Warn("Login failed", zap.String("email", req.Email), zap.Int("accounts_checked", len(candidates)))
	return models.Principal{}, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
}

// SignupStudent registers a student. The email must be unused by any
// student, mentor or admin.
func (s *AuthService) SignupStudent(req requests.SignupRequest) (*models.Student, error) {
	if reason := ValidatePassword(req.Password); reason != "" {
		return nil, apperrors.NewValidationError("%s", reason)
	}

	dob, err := utils.ParseDate(req.DOB)
	if err != nil {
		return nil, apperrors.NewValidationError("%s", err.Error())
	}
	cgpa, err := ParseCGPA(req.CGPA)
	if err != nil {
		return nil, err
	}
	var universityID *uuid.UUID
	if strings.TrimSpace(req.UniversityID) != "" {
		id, err := utils.ParseUUIDValue("university_id", req.UniversityID)
		if err != nil {
			return nil, err
		}
		universityID = &id
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &models.Student{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Password:     hashed,
		DOB:          dob,
		Department:   strings.TrimSpace(req.Department),
		CGPA:         cgpa,
		UniversityID: universityID,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		inUse, err := s.Repo.EmailInUse(tx, req.Email)
		if err != nil {
			return err
		}
		if inUse {
			return apperrors.Conflict("email already registered")
		}
		return s.Repo.CreateStudent(tx, student)
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("Student registered", zap.String("user_id", student.ID.String()))
	return student, nil
}

// Profile returns the caller's own account row.
func (s *AuthService) Profile(principal models.Principal) (interface{}, error) {
	switch principal.Role {
	case models.StudentRole:
		return s.Repo.GetStudent(principal.UserID)
	case models.MentorRole:
		return s.Repo.GetMentor(principal.UserID)
	case models.AdminRole:
		return s.Repo.GetAdmin(principal.UserID)
	}
	return nil, apperrors.ErrUnauthorized
}

func (s *AuthService) UpdateStudentProfile(principal models.Principal, req requests.StudentProfileRequest) (*models.Student, error) {
	if !principal.Is(models.StudentRole) {
		return nil, apperrors.Forbidden("only students can update a student profile")
	}
	dob, err := utils.ParseDate(req.DOB)
	if err != nil {
		return nil, apperrors.NewValidationError("%s", err.Error())
	}
	cgpa, err := ParseCGPA(req.CGPA)
	if err != nil {
		return nil, err
	}

	return s.Repo.UpdateStudent(principal.UserID, map[string]interface{}{
		"name":       strings.TrimSpace(req.Name),
		"dob":        dob,
		"department": strings.TrimSpace(req.Department),
		"cgpa":       cgpa,
	})
}

func (s *AuthService) UpdateMentorProfile(principal models.Principal, req requests.MentorProfileRequest) (*models.Mentor, error) {
	if !principal.Is(models.MentorRole) {
		return nil, apperrors.Forbidden("only mentors can update a mentor profile")
	}
	return s.Repo.UpdateMentor(principal.UserID, map[string]interface{}{
		"name":       strings.TrimSpace(req.Name),
		"department": strings.TrimSpace(req.Department),
	})
}

var maxCGPA = decimal.NewFromInt(10)

// ParseCGPA accepts an empty value or a grade between 0 and 10.
func ParseCGPA(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid cgpa %q", raw)
	}
	if d.IsNegative() || d.GreaterThan(maxCGPA) {
		return nil, apperrors.NewValidationError("cgpa must be between 0 and 10")
	}
	d = d.Round(2)
	return &d, nil
}
