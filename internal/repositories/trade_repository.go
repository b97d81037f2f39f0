package repositories

import (
	"errors"

	"tradehub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTradeNotFound      = errors.New("trade not found")
	ErrTradeAlreadyExists = errors.New("trade already exists")
)

type TradeRepository interface {
	Create(trade *models.Trade) error
	FindByID(id string) (*models.Trade, error)
	FindByName(name string) (*models.Trade, error)
	FindAll(includeInactive bool) ([]models.Trade, error)
	Update(trade *models.Trade) error
	// Deactivate - мягкое удаление через флаг is_active
	Deactivate(id string) error
}

type TradeRepositoryImpl struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

func (r *TradeRepositoryImpl) Create(trade *models.Trade) error {
	err := r.db.Create(trade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTradeAlreadyExists
		}
		return err
	}
	return nil
}

func (r *TradeRepositoryImpl) FindByID(id string) (*models.Trade, error) {
	var trade models.Trade
	err := r.db.First(&trade, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}
	return &trade, nil
}

func (r *TradeRepositoryImpl) FindByName(name string) (*models.Trade, error) {
	var trade models.Trade
	err := r.db.First(&trade, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}
	return &trade, nil
}

func (r *TradeRepositoryImpl) FindAll(includeInactive bool) ([]models.Trade, error) {
	var trades []models.Trade
	query := r.db.Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&trades).Error
	return trades, err
}

func (r *TradeRepositoryImpl) Update(trade *models.Trade) error {
	return r.db.Save(trade).Error
}

func (r *TradeRepositoryImpl) Deactivate(id string) error {
	result := r.db.Model(&models.Trade{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTradeNotFound
	}
	return nil
}
