package db

import (
	"os"
	"path/filepath"

	"github.com/ecomops/devicegate/internal/model"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// Init opens the local sqlite store and migrates the key-value table. All
// persisted client state (device id, locks, token, cached profile) lives
// there.
func Init(file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return errors.Wrap(err, "failed to create data dir")
	}
	d, err := gorm.Open(sqlite.Open(file), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return errors.Wrap(err, "failed to open storage")
	}
	if err := d.AutoMigrate(&model.StorageValue{}); err != nil {
		return errors.Wrap(err, "failed to migrate storage")
	}
	db = d
	return nil
}

// Close releases the underlying connection. Used by tests.
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	db = nil
	return errors.WithStack(sqlDB.Close())
}
