package auth

import (
	"errors"
	"strings"

	"bloom/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdminUser creates the admin account once when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured. Existing accounts are left untouched.
func SeedAdminUser(gdb *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := gdb.Where("email = ?", email).First(&existing).Error
	if err == nil {
		logrus.Info("Admin user already exists: ", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		ID:            uuid.New().String(),
		Email:         email,
		EmailVerified: true,
		PasswordHash:  string(hash),
		Name:          "Admin",
	}
	if err := gdb.Create(&user).Error; err != nil {
		return err
	}

	logrus.Info("Admin user seeded: ", email)
	return nil
}
