package search

import (
	"context"
	"fmt"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reindex rebuilds the index from every program in the database.
func Reindex(ctx context.Context, db *gorm.DB, idx ProgramIndex) error {
	if err := idx.Reset(ctx); err != nil {
		return fmt.Errorf("reset program index: %w", err)
	}

	var programs []models.Program
	if err := db.WithContext(ctx).Preload("University").Preload("Mentor").Find(&programs).Error; err != nil {
		return fmt.Errorf("load programs: %w", err)
	}

	docs := make([]ProgramDoc, 0, len(programs))
	for _, p := range programs {
		docs = append(docs, NewProgramDoc(p))
	}
	if err := idx.IndexPrograms(ctx, docs); err != nil {
		return err
	}

	config.Logger.Info("Program index rebuilt", zap.Int("programs", len(docs)))
	return nil
}
