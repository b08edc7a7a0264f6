package config

import (
	"fmt"

	"gorm.io/gorm"
)

// statusColumns are the review status columns restricted to the closed set
// Pending, Approved, Rejected.
var statusColumns = map[string]string{
	"applications":             "status",
	"application_documents":    "status",
	"scholarship_applications": "status",
	"visa_permits":             "application_status",
	"housing_requests":         "status",
}

// CreateStatusCheckConstraints adds CHECK constraints so that no writer,
// including manual SQL, can store a status outside the workflow enum.
func CreateStatusCheckConstraints(db *gorm.DB) error {
	for table, column := range statusColumns {
		name := fmt.Sprintf("chk_%s_%s", table, column)
		stmt := fmt.Sprintf(`
			DO $$
			BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
					ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s IN ('Pending', 'Approved', 'Rejected'));
				END IF;
			END $$;`, name, table, name, column)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("constraint %s: %w", name, err)
		}
	}

	return db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_housing_requests_request_type') THEN
				ALTER TABLE housing_requests ADD CONSTRAINT chk_housing_requests_request_type CHECK (request_type IN ('apply', 'vacate'));
			END IF;
		END $$;`).Error
}
