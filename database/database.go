package database

import (
	"fmt"
	"log"

	"api/config"
	"api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to postgres and returns the store handle. The handle is
// constructed once at process start and passed down explicitly; nothing in
// this codebase holds a package-level connection.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		config.PostgresHost, config.PostgresPort, config.PostgresUser, config.PostgresDB, config.PostgresPassword)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// Close releases the underlying connection pool at shutdown
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the schema for all models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Player{},
		&models.GameAttempt{},
		&models.Guess{},
		&models.DailyPuzzle{},
	)
}

// Populate seeds a default puzzle assignment for today when the catalog is
// empty, so a fresh install has a playable day
func Populate(db *gorm.DB, dateKey string) {
	var countPuzzles int64
	db.Model(&models.DailyPuzzle{}).Count(&countPuzzles)
	if countPuzzles > 0 {
		return
	}

	puzzle := models.DailyPuzzle{
		DateKey:  dateKey,
		PuzzleID: "month-day-counts",
		Answer:   "the number of days in each month in a non leap year",
		AcceptedAnswers: models.StringList{
			"days in each month",
			"number of days in each month",
			"days per month",
			"month lengths",
			"month lengths in a non leap year",
			"days in months non leap year",
		},
		Preview: models.PreviewPayload{
			"28": 1,
			"30": 4,
			"31": 7,
		},
		SolutionLabel: "Days in each month (non leap year)",
	}

	if err := db.Create(&puzzle).Error; err != nil {
		log.Println("Failed to seed default puzzle: ", err)
		return
	}
	log.Println("Default puzzle seeded for ", dateKey)
}
