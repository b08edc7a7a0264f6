package config

import (
	"errors"
	"fmt"

	"study-abroad-backend/db/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedInitialAdmin creates the first administrator from INITIAL_ADMIN_* when
// the admins table is empty.
func SeedInitialAdmin(db *gorm.DB, name, email, password string) error {
	if email == "" || password == "" {
		Logger.Info("INITIAL_ADMIN_EMAIL or INITIAL_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing models.Admin
	err := db.Order("created_at").First(&existing).Error
	if err == nil {
		Logger.Info("Admin already exists, skipping seed", zap.String("email", existing.Email))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("error checking for existing admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if name == "" {
		name = "Administrator"
	}
	admin := models.Admin{Name: name, Email: email, Password: string(hashed)}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create initial admin: %w", err)
	}

	Logger.Info("Initial admin created", zap.String("email", admin.Email))
	return nil
}
