package utils

import (
	"errors"

	"study-abroad-backend/config"
	"study-abroad-backend/utils/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RespondOK writes the success envelope.
func RespondOK(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// RespondError maps a workflow error to its HTTP status and writes the
// failure envelope. Internal failures are logged and hidden from the client.
func RespondError(c *fiber.Ctx, message string, err error, fields ...zap.Field) error {
	status := apperrors.StatusCode(err)
	if status == fiber.StatusInternalServerError {
		config.Logger.Error(message, append(fields, zap.Error(err), zap.String("path", c.Path()))...)
	} else {
		config.Logger.Warn(message, append(fields, zap.Error(err), zap.Int("status", status))...)
	}

	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		message = ve.Reason
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"error":   apperrors.PublicMessage(err),
	})
}
