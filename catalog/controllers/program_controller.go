package controllers

import (
	"study-abroad-backend/catalog/requests"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (cc *CatalogController) CreateProgram(c *fiber.Ctx) error {
	var req requests.CreateProgramRequest
	if err := bindRequest(c, &req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	program, err := cc.Service.CreateProgram(c.Context(), req)
	if err != nil {
		return utils.RespondError(c, "Failed to create program", err,
			zap.String("title", req.Title),
			zap.String("university_id", req.UniversityID),
		)
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Program created successfully", program)
}

func (cc *CatalogController) GetPrograms(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	rows, total, err := cc.Service.ListPrograms(params)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch programs", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Programs retrieved successfully",
		pagination.NewPaginatedResponse(c, rows, total, params))
}

func (cc *CatalogController) GetProgram(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid program ID", err)
	}
	program, err := cc.Service.ProgramDetail(id)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch program", err, zap.String("program_id", id.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Program retrieved successfully", program)
}

func (cc *CatalogController) SearchPrograms(c *fiber.Ctx) error {
	q := c.Query("q")
	programs, err := cc.Service.SearchPrograms(c.Context(), q, c.QueryInt("size", 0))
	if err != nil {
		return utils.RespondError(c, "Failed to search programs", err, zap.String("query", q))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Programs retrieved successfully", programs)
}

func (cc *CatalogController) DeleteProgram(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid program ID", err)
	}
	if err := cc.Service.DeleteProgram(c.Context(), id); err != nil {
		return utils.RespondError(c, "Failed to delete program", err, zap.String("program_id", id.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Program deleted successfully", nil)
}

func (cc *CatalogController) AddRequiredDocument(c *fiber.Ctx) error {
	programID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid program ID", err)
	}
	var req requests.AddRequiredDocumentRequest
	if err := bindRequest(c, &req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	doc, err := cc.Service.AddRequiredDocument(programID, req)
	if err != nil {
		return utils.RespondError(c, "Failed to add required document", err, zap.String("program_id", programID.String()))
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Required document added successfully", doc)
}

func (cc *CatalogController) GetRequiredDocuments(c *fiber.Ctx) error {
	programID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid program ID", err)
	}
	docs, err := cc.Service.ListRequiredDocuments(programID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch required documents", err, zap.String("program_id", programID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Required documents retrieved successfully", docs)
}

func (cc *CatalogController) DeleteRequiredDocument(c *fiber.Ctx) error {
	programID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid program ID", err)
	}
	docID, err := utils.ParseUUIDParam(c, "docId")
	if err != nil {
		return utils.RespondError(c, "Invalid required document ID", err)
	}
	if err := cc.Service.DeleteRequiredDocument(programID, docID); err != nil {
		return utils.RespondError(c, "Failed to delete required document", err,
			zap.String("program_id", programID.String()),
			zap.String("required_document_id", docID.String()),
		)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Required document deleted successfully", nil)
}
