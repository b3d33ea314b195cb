package routes

import (
	"errors"
	"strconv"

	"bloom/db"
	"bloom/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type bundlePayload struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	CoverImage  string      `json:"coverImage"`
	ProductIDs  interface{} `json:"productIds"`
}

// parseBundlePayload reads either a multipart form or a JSON body. The
// productIds value is kept untyped; ParseProductIDs sorts out the shape.
func parseBundlePayload(c *fiber.Ctx) (*bundlePayload, error) {
	payload := new(bundlePayload)

	if form, err := c.MultipartForm(); err == nil && form != nil {
		value := func(key string) string {
			if v := form.Value[key]; len(v) > 0 {
				return v[0]
			}
			return ""
		}
		payload.Title = value("title")
		payload.Description = value("description")
		payload.Status = value("status")
		payload.CoverImage = value("coverImage")
		if vals, ok := form.Value["productIds"]; ok {
			if len(vals) == 1 {
				payload.ProductIDs = vals[0]
			} else {
				payload.ProductIDs = vals
			}
		}
		return payload, nil
	}

	if err := c.BodyParser(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func normalizeBundleStatus(status string) string {
	if status == "published" {
		return "published"
	}
	return "unpublished"
}

var bundleSortColumns = map[string]string{
	"id":         "id",
	"title":      "title",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func getAllBundles(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("perPage", 12)
	if perPage < 1 || perPage > 100 {
		perPage = 12
	}

	// Unknown sort keys fall back to recency rather than erroring.
	column, ok := bundleSortColumns[c.Query("sort", "created_at")]
	if !ok {
		column = "created_at"
	}
	direction := "desc"
	if c.Query("order") == "asc" {
		direction = "asc"
	}

	filters := func(query *gorm.DB) *gorm.DB {
		if search := c.Query("search"); search != "" {
			query = query.Where("title LIKE ?", "%"+search+"%")
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		return query
	}

	var total int64
	if err := filters(db.DB.Model(&models.Bundle{})).Count(&total).Error; err != nil {
		logrus.Error("Failed to count bundles: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get bundles",
		})
	}

	var bundles []models.Bundle
	if err := filters(db.DB.Model(&models.Bundle{})).
		Order(column + " " + direction).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&bundles).Error; err != nil {
		logrus.Error("Failed to list bundles: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get bundles",
		})
	}

	if err := AttachProducts(db.DB, bundles); err != nil {
		logrus.Error("Failed to attach bundle products: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get bundles",
		})
	}

	return c.JSON(BundleListResponse{
		Bundles: bundles,
		Total:   int(total),
		Page:    page,
		PerPage: perPage,
	})
}

func getBundle(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid bundle id",
		})
	}

	var bundle models.Bundle
	if err := db.DB.First(&bundle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Bundle not found",
			})
		}
		logrus.Error("Failed to get bundle: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get bundle",
		})
	}

	bundles := []models.Bundle{bundle}
	if err := AttachProducts(db.DB, bundles); err != nil {
		logrus.Error("Failed to attach bundle products: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get bundle",
		})
	}

	return c.JSON(bundles[0])
}

func createBundle(c *fiber.Ctx) error {
	payload, err := parseBundlePayload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if payload.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required field: title",
		})
	}
	if payload.Description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required field: description",
		})
	}

	// Fail fast on unknown product ids before any row is written.
	productIDs := ParseProductIDs(payload.ProductIDs)
	valid, missing, err := PartitionProductIDs(db.DB, productIDs)
	if err != nil {
		logrus.Error("Failed to validate product ids: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create bundle",
		})
	}
	if len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":             "Unknown product ids",
			"invalidProductIds": missing,
		})
	}

	coverPath := payload.CoverImage
	if file, err := c.FormFile("cover"); err == nil && file != nil {
		coverPath, err = saveUploadedFile(c, file)
		if err != nil {
			logrus.Error("Failed to save bundle cover: ", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save file",
			})
		}
	}

	bundle := models.Bundle{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      normalizeBundleStatus(payload.Status),
		CoverImage:  coverPath,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&bundle).Error; err != nil {
			return err
		}
		return ReplaceBundleProducts(tx, bundle.ID, valid)
	})
	if err != nil {
		logrus.Error("Failed to create bundle: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create bundle",
		})
	}

	bundles := []models.Bundle{bundle}
	if err := AttachProducts(db.DB, bundles); err != nil {
		logrus.Error("Failed to attach bundle products: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create bundle",
		})
	}

	publishEvent("bundle.created", bundle.ID)
	return c.Status(fiber.StatusCreated).JSON(bundles[0])
}

func updateBundle(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid bundle id",
		})
	}

	var existing models.Bundle
	if err := db.DB.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Bundle not found",
			})
		}
		logrus.Error("Failed to find bundle: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find bundle",
		})
	}

	payload, err := parseBundlePayload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	// A present productIds value replaces the full set, so validate before
	// any field update is applied.
	var valid []uint
	replaceProducts := payload.ProductIDs != nil
	if replaceProducts {
		var missing []uint
		valid, missing, err = PartitionProductIDs(db.DB, ParseProductIDs(payload.ProductIDs))
		if err != nil {
			logrus.Error("Failed to validate product ids: ", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update bundle",
			})
		}
		if len(missing) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":             "Unknown product ids",
				"invalidProductIds": missing,
			})
		}
	}

	updates := map[string]interface{}{}
	if payload.Title != "" {
		updates["title"] = payload.Title
	}
	if payload.Description != "" {
		updates["description"] = payload.Description
	}
	if payload.Status != "" {
		updates["status"] = normalizeBundleStatus(payload.Status)
	}
	if payload.CoverImage != "" {
		updates["cover_image"] = payload.CoverImage
	}
	if file, err := c.FormFile("cover"); err == nil && file != nil {
		coverPath, err := saveUploadedFile(c, file)
		if err != nil {
			logrus.Error("Failed to save bundle cover: ", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save file",
			})
		}
		updates["cover_image"] = coverPath
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
		}
		if replaceProducts {
			return ReplaceBundleProducts(tx, existing.ID, valid)
		}
		return nil
	})
	if err != nil {
		logrus.Error("Failed to update bundle: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update bundle",
		})
	}

	var updated models.Bundle
	if err := db.DB.First(&updated, id).Error; err != nil {
		logrus.Error("Failed to reload bundle: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update bundle",
		})
	}
	bundles := []models.Bundle{updated}
	if err := AttachProducts(db.DB, bundles); err != nil {
		logrus.Error("Failed to attach bundle products: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update bundle",
		})
	}

	publishEvent("bundle.updated", updated.ID)
	return c.JSON(bundles[0])
}

func deleteBundle(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid bundle id",
		})
	}

	var bundle models.Bundle
	if err := db.DB.First(&bundle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Bundle not found",
			})
		}
		logrus.Error("Failed to find bundle: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to find bundle",
		})
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bundle_id = ?", bundle.ID).Delete(&models.BundleProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&bundle).Error
	})
	if err != nil {
		logrus.Error("Failed to delete bundle: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete bundle",
		})
	}

	publishEvent("bundle.deleted", bundle.ID)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Bundle deleted successfully",
	})
}
