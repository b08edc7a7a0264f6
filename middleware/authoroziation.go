package middleware

import (
	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProtectedRoute accepts a valid access token, or rotates a valid single-use
// refresh token into a new session. Groups sharing a path prefix may stack
// it, so a request that is already authenticated passes straight through.
func ProtectedRoute(ctx *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if payload, ok := c.Locals("user").(*token.Payload); ok && payload != nil {
			return c.Next()
		}

		accessToken := c.Cookies("access_token")
		refreshToken := c.Cookies("refresh_token")

		if accessToken != "" {
			payload, err := ctx.PasetoMaker.VerifyToken(accessToken)
			if err == nil {
				c.Locals("user", payload)
				return c.Next()
			}
			config.Logger.Debug("Invalid access token encountered", zap.Error(err))
		}

		if refreshToken == "" {
			config.Logger.Debug("No refresh token provided in request")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
				"error":   "Authentication required",
			})
		}

		refreshPayload, err := ctx.PasetoMaker.VerifyToken(refreshToken)
		if err != nil {
			config.Logger.Warn("Invalid refresh token verification failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
				"error":   "Session expired or invalid. Please log in again.",
			})
		}

		// GetDel makes the refresh token single-use even under concurrent requests.
		userID, err := ctx.RedisClient.GetDel(ctx.Ctx, RefreshKey(refreshToken)).Result()
		if err == redis.Nil {
			config.Logger.Warn("Refresh token not found in Redis",
				zap.String("payload_id", refreshPayload.ID.String()),
				zap.String("user_id", refreshPayload.UserID.String()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
				"error":   "Session invalid. Please log in again.",
			})
		} else if err != nil {
			config.Logger.Error("Error accessing Redis for refresh token validation",
				zap.String("payload_id", refreshPayload.ID.String()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Something went wrong",
				"error":   "An internal server error occurred.",
			})
		}

		if userID != refreshPayload.UserID.String() {
			config.Logger.Warn("Refresh token user mismatch",
				zap.String("stored_user_id", userID),
				zap.String("token_user_id", refreshPayload.UserID.String()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
				"error":   "Session invalid. Please log in again.",
			})
		}

		if err := IssueSession(c, ctx, refreshPayload.Principal()); err != nil {
			config.Logger.Error("Could not rotate session",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Something went wrong",
				"error":   "An internal server error occurred.",
			})
		}

		c.Locals("user", refreshPayload)
		return c.Next()
	}
}

// RequireRole lets only the listed roles through. It must run after
// ProtectedRoute.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, ok := c.Locals("user").(*token.Payload)
		if !ok || payload == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
				"error":   "Authentication required",
			})
		}
		for _, role := range roles {
			if payload.Role == role {
				return c.Next()
			}
		}
		config.Logger.Warn("Role not permitted for route",
			zap.String("user_id", payload.UserID.String()),
			zap.String("role", string(payload.Role)),
			zap.String("path", c.Path()),
		)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Forbidden",
			"error":   "You do not have access to this resource",
		})
	}
}
