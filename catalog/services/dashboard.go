package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"study-abroad-backend/catalog/repositories"
	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DashboardCacheResource = "dashboard"
	dashboardCacheTTL      = 30 * time.Second
)

type StudentDashboard struct {
	Student *models.Student             `json:"student"`
	Counts  *repositories.StudentCounts `json:"counts"`
}

type MentorDashboard struct {
	Mentor *models.Mentor             `json:"mentor"`
	Counts *repositories.MentorCounts `json:"counts"`
}

// AdminDashboard returns portal-wide counts, served from redis for up to 30s.
func (s *CatalogService) AdminDashboard(ctx context.Context) (*repositories.AdminCounts, error) {
	key := utils.GenerateCacheKey(DashboardCacheResource, map[string]string{"scope": "admin"})

	if s.Redis != nil {
		raw, err := s.Redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached repositories.AdminCounts
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		case !errors.Is(err, redis.Nil):
			config.Logger.Warn("Dashboard cache read failed", zap.Error(err))
		}
	}

	counts, err := s.Repo.AdminCounts()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(counts); err == nil {
			if err := s.Redis.Set(ctx, key, raw, dashboardCacheTTL).Err(); err != nil {
				config.Logger.Warn("Dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return counts, nil
}

func (s *CatalogService) StudentDashboard(principal models.Principal) (*StudentDashboard, error) {
	if !principal.Is(models.StudentRole) {
		return nil, apperrors.Forbidden("only students have a student dashboard")
	}
	student, err := s.Accounts.GetStudent(principal.UserID)
	if err != nil {
		return nil, err
	}
	counts, err := s.Repo.StudentCounts(principal.UserID)
	if err != nil {
		return nil, err
	}
	return &StudentDashboard{Student: student, Counts: counts}, nil
}

func (s *CatalogService) MentorDashboard(principal models.Principal) (*MentorDashboard, error) {
	if !principal.Is(models.MentorRole) {
		return nil, apperrors.Forbidden("only mentors have a mentor dashboard")
	}
	mentor, err := s.Accounts.GetMentor(principal.UserID)
	if err != nil {
		return nil, err
	}
	counts, err := s.Repo.MentorCounts(principal.UserID)
	if err != nil {
		return nil, err
	}
	return &MentorDashboard{Mentor: mentor, Counts: counts}, nil
}

func (s *CatalogService) AssignedStudents(principal models.Principal) ([]repositories.AssignedStudent, error) {
	if !principal.Is(models.MentorRole) {
		return nil, apperrors.Forbidden("only mentors have assigned students")
	}
	return s.Repo.AssignedStudents(principal.UserID)
}
