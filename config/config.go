package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port          string
	DatabaseURL   string
	DatabasePath  string
	JWTSecret     string
	RequireAuth   bool
	UploadDir     string
	AdminEmail    string
	AdminPassword string
}

// Load reads the environment once at startup. Handlers never touch the
// environment directly; everything they need is resolved here.
func Load() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			logrus.Warn("Failed to load .env file: ", err)
		}
	}

	return &Config{
		Port:          getEnv("PORT", "3000"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DatabasePath:  getEnv("DATABASE_PATH", "database.db"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		RequireAuth:   parseBool(getEnv("REQUIRE_AUTH", "true")),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func parseBool(value string) bool {
	return value != "" && value != "false" && value != "0"
}
