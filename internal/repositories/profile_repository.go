package repositories

import (
	"errors"
	"time"

	"tradehub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists for this user")
	ErrInsufficientCredits  = errors.New("insufficient credits")
)

type ProfileRepository interface {
	Create(profile *models.TradespersonProfile) error
	FindByID(id string) (*models.TradespersonProfile, error)
	FindByUserID(userID string) (*models.TradespersonProfile, error)
	Update(profile *models.TradespersonProfile) error

	// FindByTrade - активные мастера выбранной категории (для оповещений)
	FindByTrade(trade string) ([]models.TradespersonProfile, error)

	// AddCredits атомарно начисляет кредиты (биллинг-вебхук)
	AddCredits(userID string, amount int) error

	// DebitCredit списывает ровно один кредит, только если баланс >= 1.
	// Возвращает ErrInsufficientCredits если строк не затронуто.
	// Вызывается внутри транзакции отклика.
	DebitCredit(tx *gorm.DB, userID string) error

	// Credits возвращает текущий баланс
	Credits(userID string) (int, error)

	MarkExpiredSubscriptions() (int64, error)
}

type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) Create(profile *models.TradespersonProfile) error {
	err := r.db.Create(profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProfileAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) FindByID(id string) (*models.TradespersonProfile, error) {
	var profile models.TradespersonProfile
	err := r.db.Preload("User").First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) FindByUserID(userID string) (*models.TradespersonProfile, error) {
	var profile models.TradespersonProfile
	err := r.db.Preload("User").First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) Update(profile *models.TradespersonProfile) error {
	return r.db.Save(profile).Error
}

func (r *ProfileRepositoryImpl) FindByTrade(trade string) ([]models.TradespersonProfile, error) {
	var profiles []models.TradespersonProfile
	err := r.db.Preload("User").
		Joins("JOIN users ON users.id = tradesperson_profiles.user_id").
		Where("tradesperson_profiles.selected_trade = ? AND users.status = ?", trade, models.UserStatusActive).
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepositoryImpl) AddCredits(userID string, amount int) error {
	result := r.db.Model(&models.TradespersonProfile{}).
		Where("user_id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// DebitCredit - охраняемый UPDATE: проверка баланса и списание в одном
// выражении, между чтением и записью нет окна для гонки
func (r *ProfileRepositoryImpl) DebitCredit(tx *gorm.DB, userID string) error {
	result := tx.Model(&models.TradespersonProfile{}).
		Where("user_id = ? AND credits >= 1", userID).
		Update("credits", gorm.Expr("credits - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

func (r *ProfileRepositoryImpl) Credits(userID string) (int, error) {
	var profile models.TradespersonProfile
	err := r.db.Select("credits").First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProfileNotFound
		}
		return 0, err
	}
	return profile.Credits, nil
}

func (r *ProfileRepositoryImpl) MarkExpiredSubscriptions() (int64, error) {
	result := r.db.Model(&models.TradespersonProfile{}).
		Where("subscription_status = ? AND subscription_expiry < ?", models.SubscriptionStatusActive, time.Now()).
		Update("subscription_status", models.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}
