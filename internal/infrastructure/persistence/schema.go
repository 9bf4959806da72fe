package persistence

import (
	"fmt"

	"github.com/murdhanno/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AllModels lists every persisted model
func AllModels() []any {
	return []any{
		&models.UserModel{},
		&models.LoginAttemptModel{},
		&models.ProductTypeModel{},
		&models.SizeGroupModel{},
		&models.SizeGroupSizeModel{},
		&models.ProductModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.PrintJobModel{},
		&models.CourierCityModel{},
		&models.CourierZoneModel{},
		&models.ShipmentModel{},
	}
}

// AutoMigrate creates tables from the models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
