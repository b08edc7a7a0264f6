package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const testKey = "abcdefghijklmnopqrstuvwxyz012345"

func newMaker(t *testing.T) token.Maker {
	t.Helper()
	maker, err := token.NewPasetoMaker(testKey)
	if err != nil {
		t.Fatal(err)
	}
	return maker
}

func TestProtectedRouteAcceptsAccessToken(t *testing.T) {
	maker := newMaker(t)
	principal := models.Principal{UserID: uuid.New(), Role: models.StudentRole, Email: "s@x.test", Name: "S"}
	tok, err := maker.CreateToken(principal, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	app.Get("/me", ProtectedRoute(&AppContext{PasetoMaker: maker}), func(c *fiber.Ctx) error {
		p, err := CurrentPrincipal(c)
		if err != nil {
			return err
		}
		return c.SendString(p.UserID.String())
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", "access_token="+tok)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestProtectedRouteWithoutCookies(t *testing.T) {
	app := fiber.New()
	app.Get("/me", ProtectedRoute(&AppContext{PasetoMaker: newMaker(t)}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRequireRole(t *testing.T) {
	withRole := func(role models.Role) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Locals("user", &token.Payload{UserID: uuid.New(), Role: role})
			return c.Next()
		}
	}

	cases := []struct {
		role models.Role
		want int
	}{
		{models.AdminRole, fiber.StatusOK},
		{models.MentorRole, fiber.StatusOK},
		{models.StudentRole, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		app := fiber.New()
		app.Get("/review", withRole(tc.role), RequireRole(models.AdminRole, models.MentorRole), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/review", nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.want {
			t.Errorf("role %s: expected %d, got %d", tc.role, tc.want, resp.StatusCode)
		}
	}
}

func TestKeyedLimiter(t *testing.T) {
	l := NewKeyedLimiter(time.Minute, 2)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatal("burst should be allowed")
	}
	if l.Allow("1.1.1.1") {
		t.Fatal("third attempt inside the window should be refused")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatal("other clients have their own bucket")
	}

	clock = clock.Add(time.Minute)
	if !l.Allow("1.1.1.1") {
		t.Fatal("a token should refill after the interval")
	}

	clock = clock.Add(time.Hour)
	l.Allow("3.3.3.3")
	if _, ok := l.visitors["1.1.1.1"]; ok {
		t.Fatal("idle visitors should be evicted")
	}
}
