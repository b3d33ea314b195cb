package routes

import (
	"mime/multipart"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// saveUploadedFile stores the file under the uploads directory with a unique
// name and returns the public path handlers persist in the database.
func saveUploadedFile(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(file.Filename)
	filename := uuid.New().String() + ext

	if err := c.SaveFile(file, filepath.Join(uploadDir, filename)); err != nil {
		return "", err
	}
	return "/uploads/" + filename, nil
}

// Image upload handler
func uploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to get uploaded file",
		})
	}

	path, err := saveUploadedFile(c, file)
	if err != nil {
		logrus.Error("Failed to save file: ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
		})
	}

	// Return the file path that can be stored in the database
	return c.JSON(fiber.Map{
		"filename": filepath.Base(path),
		"path":     path,
	})
}
