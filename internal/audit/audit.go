// Package audit appends reviewer decisions to the decision_logs table.
package audit

import (
	"encoding/json"
	"fmt"

	"study-abroad-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one decision to record.
type Entry struct {
	Entity   models.DecisionEntity
	EntityID uuid.UUID
	Decision models.Decision
	Outcome  string
	Details  map[string]interface{}
}

// Record writes the entry with tx so it commits or rolls back together with
// the decision itself.
func Record(tx *gorm.DB, actor models.Principal, e Entry) error {
	var details datatypes.JSON
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("failed to encode decision details: %w", err)
		}
		details = datatypes.JSON(raw)
	}

	log := models.DecisionLog{
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Decision:  e.Decision,
		Outcome:   e.Outcome,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		Details:   details,
	}
	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("failed to write decision log: %w", err)
	}
	return nil
}

// History lists the decisions recorded for one entity, oldest first.
func History(db *gorm.DB, entity models.DecisionEntity, entityID uuid.UUID) ([]models.DecisionLog, error) {
	var logs []models.DecisionLog
	err := db.Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
