package config

import (
	"fmt"
	"time"

	"study-abroad-backend/db/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// AllModels lists every table of the portal in dependency order.
var AllModels = []interface{}{
	&models.University{},
	&models.Admin{},
	&models.Mentor{},
	&models.Student{},
	&models.Program{},
	&models.RequiredDocument{},
	&models.Application{},
	&models.ApplicationDocument{},
	&models.Scholarship{},
	&models.ScholarshipApplication{},
	&models.VisaPermit{},
	&models.Housing{},
	&models.HousingAssignment{},
	&models.HousingRequest{},
	&models.DecisionLog{},
}

func ConfigureDatabase() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		GetEnv("DB_HOST"),
		GetEnv("POSTGRES_USER"),
		GetEnv("POSTGRES_PASSWORD"),
		GetEnv("POSTGRES_DB"),
		GetEnvDefault("DB_PORT", "5432"),
		GetEnvDefault("DB_TIMEZONE", "UTC"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		Logger.Fatal("[DB-CONNECT] Failed to connect to database", zap.Error(err))
	}

	if err := Migrate(db); err != nil {
		Logger.Fatal("[DB-MIGRATE] Failed to migrate tables", zap.Error(err))
	}
	Logger.Info("Tables migrated successfully")

	sqlDB, err := db.DB()
	if err != nil {
		Logger.Fatal("[DB-POOL] Failed to get underlying DB connection", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	Logger.Info("[DB-STATUS] Database setup complete")
	return db
}

// Migrate creates or updates every table and the extra constraints gorm tags
// cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels...); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		if err := CreateStatusCheckConstraints(db); err != nil {
			return fmt.Errorf("failed to create status constraints: %w", err)
		}
	}
	return nil
}
