package routes

import (
	"errors"
	"time"

	"bloom/auth"
	"bloom/db"
	"bloom/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionLifetime = 7 * 24 * time.Hour

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

func login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Email and password are required",
		})
	}

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		logrus.Error("Failed to look up user: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log in",
		})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	now := time.Now()
	expiresAt := now.Add(sessionLifetime)
	session := models.UserSession{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Token:      uuid.New().String(),
		ExpiresAt:  &expiresAt,
		IPAddress:  c.IP(),
		UserAgent:  c.Get(fiber.HeaderUserAgent),
		LastActive: &now,
	}
	if err := db.DB.Create(&session).Error; err != nil {
		logrus.Error("Failed to create session: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to log in",
		})
	}

	return c.JSON(LoginResponse{
		Token:     session.Token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

func logout(c *fiber.Ctx) error {
	token := auth.TokenFromRequest(c)
	if token != "" {
		if err := db.DB.Where("token = ?", token).Delete(&models.UserSession{}).Error; err != nil {
			logrus.Error("Failed to delete session: ", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to log out",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

func me(c *fiber.Ctx) error {
	identity, _ := c.Locals("user").(*auth.Identity)
	return c.JSON(fiber.Map{
		"user": identity,
	})
}
