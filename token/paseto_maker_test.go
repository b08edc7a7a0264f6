package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"study-abroad-backend/db/models"

	"github.com/google/uuid"
)

const testKey = "12345678901234567890123456789012"

func testPrincipal() models.Principal {
	return models.Principal{UserID: uuid.New(), Role: models.MentorRole, Email: "m@uni.test", Name: "Mentor"}
}

func TestPasetoMakerRoundTrip(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	principal := testPrincipal()
	tok, err := maker.CreateToken(principal, time.Minute)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	payload, err := maker.VerifyToken(tok)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if payload.Principal() != principal {
		t.Fatalf("expected %+v, got %+v", principal, payload.Principal())
	}
	if !payload.ExpiredAt.After(payload.IssuedAt) {
		t.Fatal("expiry must follow issue time")
	}
}

func TestPasetoMakerRejectsExpired(t *testing.T) {
	maker, _ := NewPasetoMaker(testKey)

	payload, err := NewPayload(testPrincipal(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	payload.ExpiredAt = time.Now().Add(-time.Minute)

	pm := maker.(*PasetoMaker)
	tok, err := pm.paseto.Encrypt(pm.symmetricKey, payload, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = maker.VerifyToken(tok)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestPasetoMakerRejectsForeignKey(t *testing.T) {
	a, _ := NewPasetoMaker(testKey)
	b, _ := NewPasetoMaker(strings.Repeat("z", 32))

	tok, err := a.CreateToken(testPrincipal(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.VerifyToken(tok); err == nil {
		t.Fatal("token from another key must not verify")
	}
}

func TestNewPasetoMakerKeySize(t *testing.T) {
	if _, err := NewPasetoMaker("short"); err == nil {
		t.Fatal("expected key size error")
	}
}

func TestNewPayloadValidation(t *testing.T) {
	if _, err := NewPayload(models.Principal{Role: models.AdminRole}, time.Minute); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if _, err := NewPayload(models.Principal{UserID: uuid.New(), Role: "guest"}, time.Minute); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := NewPayload(testPrincipal(), 0); err == nil {
		t.Fatal("expected error for non-positive duration")
	}
}
