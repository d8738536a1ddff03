package bootstrap

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storebot/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts baseline rows:
// the order statuses and, when adminID is set, the first admin.
func MigrateAndSeed(db *gorm.DB, adminID int64) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db, adminID); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		// Catalog
		&models.Category{},
		&models.AccessoryBrand{},
		&models.DeviceBrand{},
		&models.DeviceModel{},
		&models.Series{},
		&models.Variation{},
		&models.Color{},
		&models.Product{},
		&models.ProductImage{},
		// Customers and orders
		&models.Customer{},
		&models.CartItem{},
		&models.OrderStatus{},
		&models.Order{},
		&models.OrderItem{},
		&models.Admin{},
		// Queue-backed cron
		&models.CronJob{},
		&models.CronJobItem{},
	}
}

func seedDefaults(db *gorm.DB, adminID int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := ensureOrderStatuses(tx); err != nil {
			return err
		}
		if adminID != 0 {
			if err := ensureAdmin(tx, adminID); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureOrderStatuses(tx *gorm.DB) error {
	for _, name := range []string{
		models.OrderStatusInProgress,
		models.OrderStatusDone,
		models.OrderStatusCanceled,
	} {
		row := models.OrderStatus{Name: name}
		if err := tx.Where("name = ?", name).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureAdmin(tx *gorm.DB, adminID int64) error {
	row := models.Admin{ID: adminID, ChatID: adminID}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
