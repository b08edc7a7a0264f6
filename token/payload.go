package token

import (
	"errors"
	"fmt"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/utils"

	"github.com/google/uuid"
)

var ErrExpired = errors.New("token has expired")

type Payload struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      models.Role `json:"role"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiredAt time.Time   `json:"expired_at"`
}

func NewPayload(principal models.Principal, duration time.Duration) (*Payload, error) {
	if principal.UserID == uuid.Nil {
		return nil, errors.New("user id cannot be empty")
	}
	if !principal.Role.Valid() {
		return nil, fmt.Errorf("invalid role %q", principal.Role)
	}
	if duration <= 0 {
		return nil, errors.New("duration must be positive")
	}

	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().In(utils.DateLocation)
	expiredAt := issuedAt.Add(duration)

	payload := &Payload{
		ID:        tokenID,
		UserID:    principal.UserID,
		Role:      principal.Role,
		Email:     principal.Email,
		Name:      principal.Name,
		IssuedAt:  issuedAt,
		ExpiredAt: expiredAt,
	}
	return payload, nil
}

func (payload *Payload) Valid() error {
	if time.Now().In(utils.DateLocation).After(payload.ExpiredAt) {
		return ErrExpired
	}
	return nil
}

// Principal is the caller identity carried by the token.
func (payload *Payload) Principal() models.Principal {
	return models.Principal{
		UserID: payload.UserID,
		Role:   payload.Role,
		Email:  payload.Email,
		Name:   payload.Name,
	}
}

func (p *Payload) String() string {
	return fmt.Sprintf("ID: %s, UserID: %s, Role: %s, IssuedAt: %s, ExpiredAt: %s", p.ID, p.UserID, p.Role, p.IssuedAt, p.ExpiredAt)
}
