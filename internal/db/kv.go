package db

import (
	"github.com/ecomops/devicegate/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue returns the stored value for key, or "" when absent.
func GetValue(key string) (string, error) {
	var v model.StorageValue
	err := db.Where("key = ?", key).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to read storage value")
	}
	return v.Value, nil
}

func SetValue(key, value string) error {
	v := model.StorageValue{Key: key, Value: value}
	return errors.WithStack(db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&v).Error)
}

func DeleteValue(key string) error {
	return errors.WithStack(db.Where("key = ?", key).Delete(&model.StorageValue{}).Error)
}

func DeleteValues(keys ...string) error {
	return errors.WithStack(db.Where("key IN ?", keys).Delete(&model.StorageValue{}).Error)
}
