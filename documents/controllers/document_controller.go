package controllers

import (
	"fmt"
	"io"
	"path"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/documents/requests"
	"study-abroad-backend/documents/services"
	"study-abroad-backend/documents/validators"
	"study-abroad-backend/middleware"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DocumentController struct {
	DocumentService *services.DocumentService
}

func (dc *DocumentController) UploadDocument(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	applicationID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid application ID", err)
	}
	reqID, err := utils.ParseUUIDParam(c, "reqId")
	if err != nil {
		return utils.RespondError(c, "Invalid document requirement ID", err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.RespondError(c, "No file uploaded", apperrors.NewValidationError("file is required"))
	}
	if fileHeader.Size > validators.MaxUploadSize {
		return utils.RespondError(c, "File too large", apperrors.NewValidationError("file size exceeds maximum allowed size (10MB)"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.RespondError(c, "Failed to read uploaded file", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, validators.MaxUploadSize+1))
	if err != nil {
		return utils.RespondError(c, "Failed to read uploaded file", err)
	}

	config.Logger.Info("Processing document upload",
		zap.String("application_id", applicationID.String()),
		zap.String("req_id", reqID.String()),
		zap.String("file_name", fileHeader.Filename),
		zap.Int64("size", fileHeader.Size),
	)

	doc, err := dc.DocumentService.Upload(c.Context(), principal, applicationID, reqID, fileHeader.Filename, content)
	if err != nil {
		return utils.RespondError(c, "Document upload failed", err,
			zap.String("application_id", applicationID.String()),
			zap.String("user_id", principal.UserID.String()),
		)
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Document uploaded successfully", doc)
}

func (dc *DocumentController) DecideDocument(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	applicationID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid application ID", err)
	}
	reqID, err := utils.ParseUUIDParam(c, "reqId")
	if err != nil {
		return utils.RespondError(c, "Invalid document requirement ID", err)
	}

	var req requests.DecideDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	decision, err := models.ParseDecision(req.Action)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	doc, err := dc.DocumentService.Decide(c.Context(), principal, applicationID, reqID, decision)
	if err != nil {
		return utils.RespondError(c, "Failed to process document decision", err,
			zap.String("application_id", applicationID.String()),
			zap.String("req_id", reqID.String()),
			zap.String("user_id", principal.UserID.String()),
		)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Document "+string(doc.Status), doc)
}

func (dc *DocumentController) GetRequirements(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	applicationID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid application ID", err)
	}

	rows, err := dc.DocumentService.Requirements(principal, applicationID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch documents", err, zap.String("application_id", applicationID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Documents retrieved successfully", rows)
}

func (dc *DocumentController) DownloadDocument(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	applicationID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid application ID", err)
	}
	reqID, err := utils.ParseUUIDParam(c, "reqId")
	if err != nil {
		return utils.RespondError(c, "Invalid document requirement ID", err)
	}

	rc, fileName, err := dc.DocumentService.Open(principal, applicationID, reqID)
	if err != nil {
		return utils.RespondError(c, "Failed to open document", err, zap.String("application_id", applicationID.String()))
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return utils.RespondError(c, "Failed to read document", err, zap.String("file", fileName))
	}

	c.Set(fiber.HeaderContentType, validators.ContentType(fileName))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", path.Base(fileName)))
	return c.Send(content)
}

func (dc *DocumentController) GetPendingDocuments(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	docs, err := dc.DocumentService.PendingForMentor(principal)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch pending documents", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Pending documents retrieved successfully", docs)
}
