package repository

import (
	"errors"
	"time"

	settingsdomain "readerdash/internal/settings/domain"

	"gorm.io/gorm"
)

// SettingRepository defines the interface for persisted settings
type SettingRepository interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// settingRepository implements SettingRepository interface
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new instance of settingRepository
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{
		db: db,
	}
}

// Get returns the stored value, or empty string when the key is unset.
func (r *settingRepository) Get(key string) (string, error) {
	var setting settingsdomain.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

func (r *settingRepository) Set(key, value string) error {
	setting := settingsdomain.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.Save(&setting).Error
}
