package token

import (
	"time"

	"study-abroad-backend/db/models"
)

// Maker creates and verifies session tokens for an authenticated principal.
type Maker interface {
	CreateToken(principal models.Principal, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}
