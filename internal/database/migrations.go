package database

import (
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table the service owns.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Rider{},
		&models.Parcel{},
		&models.Payment{},
		&models.Cashout{},
		&models.TrackingLog{},
		&models.OTP{},
	)
}
