package utils

import (
	"fmt"
	"strings"

	"study-abroad-backend/config"

	"github.com/gofiber/fiber/v2"
)

// GetDownloadURL generates a download URL based on the environment (http for development, https for production).
func GetDownloadURL(c *fiber.Ctx, filePath string) string {
	filePath = strings.TrimPrefix(filePath, "/")

	if config.GetEnv("APP_ENV") == "production" {
		return fmt.Sprintf("https://%s/%s", c.Hostname(), filePath)
	}
	return fmt.Sprintf("http://%s/%s", c.Hostname(), filePath)
}
