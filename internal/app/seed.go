package app

import (
	"errors"

	"tradehub_backend/internal/config"
	"tradehub_backend/internal/logger"
	"tradehub_backend/internal/models"

	"gorm.io/gorm"
)

var defaultTrades = []models.Trade{
	{Name: "Plumber", Description: "Installation and repair of plumbing systems", Icon: "plumber-icon-url"},
	{Name: "Electrician", Description: "Electrical installation and maintenance", Icon: "electrician-icon-url"},
	{Name: "Carpenter", Description: "Woodworking and furniture making", Icon: "carpenter-icon-url"},
	{Name: "Painter", Description: "Interior and exterior painting", Icon: "painter-icon-url"},
	{Name: "HVAC Technician", Description: "Heating, ventilation, and air conditioning", Icon: "hvac-icon-url"},
	{Name: "Builder", Description: "General construction and building work", Icon: "builder-icon-url"},
}

// seed наполняет каталог ремесел и создает первого админа
func seed(db *gorm.DB, deps *Dependencies) error {
	if err := seedTrades(db); err != nil {
		return err
	}

	cfg := config.GetConfig()
	return deps.AuthService.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password)
}

func seedTrades(db *gorm.DB) error {
	log := logger.GetLogger()

	for _, trade := range defaultTrades {
		t := trade
		t.IsActive = true
		err := db.Where("name = ?", t.Name).First(&models.Trade{}).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&t).Error; err != nil {
			return err
		}
		log.Info("seeded trade", "name", t.Name)
	}
	return nil
}
