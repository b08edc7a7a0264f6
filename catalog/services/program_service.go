package services

import (
	"context"
	"strings"
	"time"

	"study-abroad-backend/catalog/repositories"
	"study-abroad-backend/catalog/requests"
	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/search"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSearchSize = 20

func (s *CatalogService) CreateProgram(ctx context.Context, req requests.CreateProgramRequest) (*models.Program, error) {
	universityID, err := utils.ParseUUIDValue("university_id", req.UniversityID)
	if err != nil {
		return nil, err
	}
	mentorID, err := optionalUUID("mentor_id", req.MentorID)
	if err != nil {
		return nil, err
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("start_date: %s", err.Error())
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("end_date: %s", err.Error())
	}
	if start != nil && end != nil && time.Time(*end).Before(time.Time(*start)) {
		return nil, apperrors.NewValidationError("end_date must not be before start_date")
	}

	program := &models.Program{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		ProgramType:  strings.TrimSpace(req.ProgramType),
		Duration:     req.Duration,
		Eligibility:  strings.TrimSpace(req.Eligibility),
		StartDate:    start,
		EndDate:      end,
		UniversityID: universityID,
		MentorID:     mentorID,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Repo.GetUniversity(tx, universityID); err != nil {
			return err
		}
		if mentorID != nil {
			if _, err := s.Repo.GetMentor(tx, *mentorID); err != nil {
				return err
			}
		}
		return s.Repo.CreateProgram(tx, program)
	})
	if err != nil {
		return nil, err
	}

	s.indexProgram(ctx, program.ID)
	s.invalidateDashboards()
	config.Logger.Info("Program created", zap.String("program_id", program.ID.String()), zap.String("title", program.Title))
	return program, nil
}

func (s *CatalogService) ListPrograms(params pagination.PaginationParams) ([]repositories.ProgramView, int64, error) {
	return s.Repo.ListPrograms(params)
}

func (s *CatalogService) ProgramDetail(id uuid.UUID) (*models.Program, error) {
	return s.Repo.GetProgramDetail(id)
}

func (s *CatalogService) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProgram(id); err != nil {
		return err
	}
	s.unindexProgram(ctx, id)
	s.invalidateDashboards()
	config.Logger.Info("Program deleted", zap.String("program_id", id.String()))
	return nil
}

// SearchPrograms runs a full-text query and returns the matching programs
// in relevance order.
func (s *CatalogService) SearchPrograms(ctx context.Context, q string, size int) ([]repositories.ProgramView, error) {
	if s.Index == nil {
		return nil, apperrors.NewValidationError("program search is not available")
	}
	if size <= 0 || size > pagination.MaxPageSize {
		size = defaultSearchSize
	}

	hits, err := s.Index.SearchPrograms(ctx, q, size)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return s.Repo.ProgramsByID(ids)
}

func (s *CatalogService) AddRequiredDocument(programID uuid.UUID, req requests.AddRequiredDocumentRequest) (*models.RequiredDocument, error) {
	name := strings.TrimSpace(req.DocumentName)
	if name == "" {
		return nil, apperrors.NewValidationError("document_name is required")
	}
	if _, err := s.Repo.GetProgram(programID); err != nil {
		return nil, err
	}

	doc := &models.RequiredDocument{ProgramID: programID, DocumentName: name}
	if err := s.Repo.AddRequiredDocument(nil, doc); err != nil {
		return nil, err
	}
	config.Logger.Info("Required document added",
		zap.String("program_id", programID.String()),
		zap.String("required_document_id", doc.ID.String()),
	)
	return doc, nil
}

func (s *CatalogService) ListRequiredDocuments(programID uuid.UUID) ([]models.RequiredDocument, error) {
	if _, err := s.Repo.GetProgram(programID); err != nil {
		return nil, err
	}
	return s.Repo.ListRequiredDocuments(programID)
}

func (s *CatalogService) DeleteRequiredDocument(programID, id uuid.UUID) error {
	return s.Repo.DeleteRequiredDocument(programID, id)
}

// indexProgram pushes the current state of a program to the search index.
// Index failures are logged; the catalog row is the source of truth.
func (s *CatalogService) indexProgram(ctx context.Context, id uuid.UUID) {
	if s.Index == nil {
		return
	}
	program, err := s.Repo.GetProgram(id)
	if err != nil {
		config.Logger.Warn("Program not indexed", zap.String("program_id", id.String()), zap.Error(err))
		return
	}
	if err := s.Index.IndexProgram(ctx, search.NewProgramDoc(*program)); err != nil {
		config.Logger.Warn("Program not indexed", zap.String("program_id", id.String()), zap.Error(err))
	}
}

func (s *CatalogService) unindexProgram(ctx context.Context, id uuid.UUID) {
	if s.Index == nil {
		return
	}
	if err := s.Index.DeleteProgram(ctx, id.String()); err != nil {
		config.Logger.Warn("Program not removed from index", zap.String("program_id", id.String()), zap.Error(err))
	}
}
