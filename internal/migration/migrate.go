package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/corplearn/corplearn-backend/internal/domain"
	"github.com/corplearn/corplearn-backend/pkg/logger"
)

// Run migrates the full schema. AutoMigrate is additive: it creates missing
// tables, columns and indexes and never drops anything.
func Run(db *gorm.DB) error {
	models := []interface{}{
		&domain.ContentEntity{},
		&domain.ContentVersion{},
		&domain.AuditHistory{},
		&domain.Notification{},
		&domain.NotificationRecipient{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("running schema migration: %w", err)
	}
	logger.Get().Info().Int("models", len(models)).Msg("schema migration complete")
	return nil
}
