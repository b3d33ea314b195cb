package routes

import (
	"errors"
	"strconv"
	"strings"

	"bloom/db"
	"bloom/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type productPayload struct {
	Name        string   `json:"name" form:"name" validate:"required"`
	Description string   `json:"description" form:"description"`
	Category    string   `json:"category" form:"category"`
	Size        string   `json:"size" form:"size"`
	Gender      string   `json:"gender" form:"gender"`
	Colors      []string `json:"colors" form:"colors"`
	Price       *float64 `json:"price" form:"price" validate:"required,gt=0"`
	Stock       *uint    `json:"stock" form:"stock"`
	Status      string   `json:"status" form:"status" validate:"omitempty,oneof=published unpublished archived"`
	CoverImage  string   `json:"cover_image" form:"cover_image"`
	Image1      string   `json:"image_1" form:"image_1"`
	Image2      string   `json:"image_2" form:"image_2"`
}

func parseProductPayload(c *fiber.Ctx) (*productPayload, error) {
	payload := new(productPayload)
	if err := c.BodyParser(payload); err != nil {
		return nil, err
	}

	// Clients sometimes send colors as one comma-joined form value.
	if len(payload.Colors) == 1 && strings.Contains(payload.Colors[0], ",") {
		parts := strings.Split(payload.Colors[0], ",")
		payload.Colors = payload.Colors[:0]
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				payload.Colors = append(payload.Colors, part)
			}
		}
	}

	// Multipart image files override any path fields.
	for _, field := range []struct {
		name   string
		target *string
	}{
		{"cover", &payload.CoverImage},
		{"image1", &payload.Image1},
		{"image2", &payload.Image2},
	} {
		file, err := c.FormFile(field.name)
		if err != nil || file == nil {
			continue
		}
		path, err := saveUploadedFile(c, file)
		if err != nil {
			return nil, err
		}
		*field.target = path
	}

	return payload, nil
}

func invalidFields(err error) []string {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return nil
	}
	fields := make([]string, 0, len(verr))
	for _, fe := range verr {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return fields
}

func getAllProducts(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	if skip < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skip parameter",
		})
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid limit parameter",
		})
	}

	filters := func(query *gorm.DB) *gorm.DB {
		if search := c.Query("search"); search != "" {
			query = query.Where("name LIKE ?", "%"+search+"%")
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		return query
	}

	var total int64
	if err := filters(db.DB.Model(&models.Product{})).Count(&total).Error; err != nil {
		logrus.Error("Failed to count products: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get products",
		})
	}

	query := filters(db.DB.Model(&models.Product{}))
	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	} else {
		query = query.Limit(int(total)) // Fetch all after skip
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		logrus.Error("Failed to list products: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get products",
		})
	}

	return c.JSON(ProductListResponse{
		Products: products,
		Total:    int(total),
		Skip:     skip,
		Limit:    limit,
	})
}

func getProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var product models.Product

	if err := db.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		logrus.Error("Failed to get product: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get product",
		})
	}

	return c.JSON(product)
}

func createProduct(c *fiber.Ctx) error {
	payload, err := parseProductPayload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Missing required fields: name or price",
			"fields": invalidFields(err),
		})
	}

	product := models.Product{
		Name:        payload.Name,
		Description: payload.Description,
		Category:    payload.Category,
		Size:        payload.Size,
		Gender:      payload.Gender,
		Colors:      payload.Colors,
		Price:       *payload.Price,
		Status:      payload.Status,
		CoverImage:  payload.CoverImage,
		Image1:      payload.Image1,
		Image2:      payload.Image2,
	}
	if payload.Stock != nil {
		product.Stock = *payload.Stock
	}
	if product.Status == "" {
		product.Status = "unpublished"
	}

	if err := db.DB.Create(&product).Error; err != nil {
		logrus.Error("Failed to create product: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create product",
		})
	}

	publishEvent("product.created", product.ID)
	return c.Status(fiber.StatusCreated).JSON(product)
}

func updateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var existing models.Product
	if err := db.DB.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		logrus.Error("Failed to find product: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	payload, err := parseProductPayload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if payload.Status != "" && payload.Status != "published" &&
		payload.Status != "unpublished" && payload.Status != "archived" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Invalid status",
			"fields": []string{"status"},
		})
	}
	if payload.Price != nil && *payload.Price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Invalid price",
			"fields": []string{"price"},
		})
	}

	updates := map[string]interface{}{}
	if payload.Name != "" {
		updates["name"] = payload.Name
	}
	if payload.Description != "" {
		updates["description"] = payload.Description
	}
	if payload.Category != "" {
		updates["category"] = payload.Category
	}
	if payload.Size != "" {
		updates["size"] = payload.Size
	}
	if payload.Gender != "" {
		updates["gender"] = payload.Gender
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.Price != nil {
		updates["price"] = *payload.Price
	}
	if payload.Stock != nil {
		updates["stock"] = *payload.Stock
	}
	if payload.CoverImage != "" {
		updates["cover_image"] = payload.CoverImage
	}
	if payload.Image1 != "" {
		updates["image_1"] = payload.Image1
	}
	if payload.Image2 != "" {
		updates["image_2"] = payload.Image2
	}
	if len(payload.Colors) > 0 {
		if err := db.DB.Model(&existing).Update("colors", payload.Colors).Error; err != nil {
			logrus.Error("Failed to update product colors: ", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update product",
			})
		}
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&existing).Updates(updates).Error; err != nil {
			logrus.Error("Failed to update product: ", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update product",
			})
		}
	}

	var updated models.Product
	if err := db.DB.First(&updated, id).Error; err != nil {
		logrus.Error("Failed to reload product: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update product",
		})
	}

	publishEvent("product.updated", updated.ID)
	return c.JSON(updated)
}

func deleteProduct(c *fiber.Ctx) error {
	idParam := c.Params("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product id",
		})
	}

	var product models.Product
	if err := db.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		logrus.Error("Failed to find product: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find product",
		})
	}

	// Association rows go first so the delete does not depend on the
	// store's cascade settings.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.BundleProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		logrus.Error("Failed to delete product: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete product",
		})
	}

	publishEvent("product.deleted", product.ID)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}
