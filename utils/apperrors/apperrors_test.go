package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 200},
		{NewValidationError("country %q is not offered", "Mars"), 400},
		{ErrUnauthorized, 401},
		{Forbidden("not the program mentor"), 403},
		{NotFound("visa"), 404},
		{Conflict("email already registered"), 409},
		{fmt.Errorf("decide: %w", ErrAlreadyDecided), 409},
		{errors.New("connection reset"), 500},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Fatalf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("invalid extension %s", "exe")
	if err.Error() != "invalid extension exe" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected validation error to unwrap to ErrValidation")
	}
	if PublicMessage(errors.New("pq: deadlock")) != "An internal server error occurred." {
		t.Fatal("internal errors must not leak")
	}
}
