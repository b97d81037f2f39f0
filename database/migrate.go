package database

import (
	"tradehub_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate прогоняет авто-миграции всех моделей
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Trade{},
		&models.TradespersonProfile{},
		&models.Job{},
		&models.JobApplicant{},
	)
}
