package services

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var (
	uppercase = regexp.MustCompile(`[A-Z]`)
	lowercase = regexp.MustCompile(`[a-z]`)
	digit     = regexp.MustCompile(`[0-9]`)
)

// ValidatePassword returns a reason the password is too weak, or "".
func ValidatePassword(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}
	if !uppercase.MatchString(password) {
		return "Password must contain at least one uppercase letter"
	}
	if !lowercase.MatchString(password) {
		return "Password must contain at least one lowercase letter"
	}
	if !digit.MatchString(password) {
		return "Password must contain at least one digit"
	}
	return ""
}
