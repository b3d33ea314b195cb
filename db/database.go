package db

import (
	"os"
	"path/filepath"

	"bloom/config"
	"bloom/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDatabase opens Postgres when DATABASE_URL is configured and falls back
// to a local SQLite file otherwise, then runs migrations.
func InitDatabase(cfg *config.Config) {
	var err error

	if cfg.DatabaseURL != "" {
		DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			logrus.Fatal("Failed to connect to database: ", err)
		}
		logrus.Info("Database connected successfully (postgres)")
	} else {
		dbPath := cfg.DatabasePath

		// Ensure the directory exists (create if it doesn't)
		dir := filepath.Dir(dbPath)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				logrus.Fatal("Failed to create database directory: ", err)
			}
		}

		// Check if the database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			logrus.Info("Database file does not exist, creating: ", dbPath)
			file, err := os.Create(dbPath)
			if err != nil {
				logrus.Fatal("Failed to create database file: ", err)
			}
			file.Close()
		}

		DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
		if err != nil {
			logrus.Fatal("Failed to connect to database: ", err)
		}
		logrus.Info("Database connected successfully at ", dbPath)
	}

	if err := Migrate(DB); err != nil {
		logrus.Fatal("Failed to migrate database: ", err)
	}
}

// Migrate runs the schema migration on the given connection. Exposed so tests
// can run it against their own database.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.Product{}, &models.Bundle{}, &models.BundleProduct{},
		&models.Order{}, &models.User{}, &models.UserSession{},
	)
}
