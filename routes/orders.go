package routes

import (
	"errors"
	"strconv"
	"strings"

	"bloom/db"
	"bloom/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func orderSearchScope(query *gorm.DB, term string) *gorm.DB {
	pattern := "%" + term + "%"
	return query.Where(
		"(order_number LIKE ? OR customer_name LIKE ? OR customer_email LIKE ?)",
		pattern, pattern, pattern,
	)
}

func getAllOrders(c *fiber.Ctx) error {
	query := db.DB.Model(&models.Order{})

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		query = orderSearchScope(query, term)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		logrus.Error("Failed to list orders: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get orders",
		})
	}

	return c.JSON(orders)
}

func searchOrders(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required query parameter: q",
		})
	}

	var orders []models.Order
	if err := orderSearchScope(db.DB.Model(&models.Order{}), term).
		Order("created_at DESC").
		Limit(25).
		Find(&orders).Error; err != nil {
		logrus.Error("Failed to search orders: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search orders",
		})
	}

	return c.JSON(orders)
}

func getOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid order id",
		})
	}

	var order models.Order
	if err := db.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Order not found",
			})
		}
		logrus.Error("Failed to get order: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get order",
		})
	}

	return c.JSON(order)
}
