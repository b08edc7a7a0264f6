package middleware

import (
	"fmt"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	"study-abroad-backend/token"
	"study-abroad-backend/utils/apperrors"

	"github.com/gofiber/fiber/v2"
)

const (
	AccessTokenDuration  = 15 * time.Minute
	RefreshTokenDuration = 7 * 24 * time.Hour

	refreshKeyPrefix = "refresh_token:"
)

func RefreshKey(refreshToken string) string {
	return refreshKeyPrefix + refreshToken
}

// IssueSession mints an access/refresh pair for the principal, records the
// refresh token in Redis and sets both cookies.
func IssueSession(c *fiber.Ctx, appCtx *AppContext, principal models.Principal) error {
	accessToken, err := appCtx.PasetoMaker.CreateToken(principal, AccessTokenDuration)
	if err != nil {
		return fmt.Errorf("could not create access token: %w", err)
	}
	refreshToken, err := appCtx.PasetoMaker.CreateToken(principal, RefreshTokenDuration)
	if err != nil {
		return fmt.Errorf("could not create refresh token: %w", err)
	}

	if err := appCtx.RedisClient.Set(appCtx.Ctx, RefreshKey(refreshToken), principal.UserID.String(), RefreshTokenDuration).Err(); err != nil {
		return fmt.Errorf("could not store refresh token: %w", err)
	}

	c.Cookie(sessionCookie("access_token", accessToken, AccessTokenDuration))
	c.Cookie(sessionCookie("refresh_token", refreshToken, RefreshTokenDuration))
	return nil
}

// ClearSession revokes the refresh token and expires both cookies.
func ClearSession(c *fiber.Ctx, appCtx *AppContext) {
	if refreshToken := c.Cookies("refresh_token"); refreshToken != "" {
		appCtx.RedisClient.Del(appCtx.Ctx, RefreshKey(refreshToken))
	}
	for _, name := range []string{"access_token", "refresh_token"} {
		cookie := sessionCookie(name, "", 0)
		cookie.Expires = time.Now().Add(-time.Hour)
		c.Cookie(cookie)
	}
}

func sessionCookie(name, value string, ttl time.Duration) *fiber.Cookie {
	production := config.GetEnv("APP_ENV") == "production"
	sameSite := "Lax"
	if production {
		sameSite = "None"
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   production,
		SameSite: sameSite,
		Path:     "/",
		Domain:   config.GetEnv("COOKIE_DOMAIN"),
	}
}

// CurrentPrincipal returns the caller stored by ProtectedRoute.
func CurrentPrincipal(c *fiber.Ctx) (models.Principal, error) {
	payload, ok := c.Locals("user").(*token.Payload)
	if !ok || payload == nil {
		return models.Principal{}, apperrors.ErrUnauthorized
	}
	return payload.Principal(), nil
}
