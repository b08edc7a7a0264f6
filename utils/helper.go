package utils

import (
	"strings"

	"study-abroad-backend/utils/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParseUUIDParam reads a route parameter as a UUID.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid %s: %q", name, raw)
	}
	return id, nil
}

// ParseUUIDValue parses a body or form value as a UUID.
func ParseUUIDValue(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid %s: %q", field, raw)
	}
	return id, nil
}
