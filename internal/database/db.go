package database

import (
	"fmt"

	"warehouse-backend/internal/config"
	"warehouse-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Msg("database connected, migration complete")
}

// Migrate runs AutoMigrate and seeds the location grid. Exposed separately so
// the test harness can run it against a throwaway schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.Pallet{},
		&models.PalletPart{},
		&models.ActivityLog{},
		&models.CustomerRate{},
		&models.Invoice{},
		&models.Settings{},
	)
	if err != nil {
		return err
	}

	if err := seedLocations(db); err != nil {
		return err
	}

	// Settings is a single-row table; make sure the row exists.
	var count int64
	db.Model(&models.Settings{}).Count(&count)
	if count == 0 {
		if err := db.Create(&models.Settings{}).Error; err != nil {
			return err
		}
	}

	return nil
}

// seedLocations fills the storage grid on first boot: aisles A-J, racks 1-8,
// levels 1-6, ids like "B3-L2". Idempotent.
func seedLocations(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Location{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	aisles := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	locations := make([]models.Location, 0, len(aisles)*8*6)
	for _, aisle := range aisles {
		for rack := 1; rack <= 8; rack++ {
			for level := 1; level <= 6; level++ {
				locations = append(locations, models.Location{
					ID:    fmt.Sprintf("%s%d-L%d", aisle, rack, level),
					Aisle: aisle,
					Rack:  rack,
					Level: level,
				})
			}
		}
	}

	if err := db.CreateInBatches(locations, 100).Error; err != nil {
		return err
	}
	log.Info().Int("count", len(locations)).Msg("location grid seeded")
	return nil
}
