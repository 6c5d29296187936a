// error_utils.go
package utils

import (
	"Backend-Relific-Core/src/models"

	"github.com/gofiber/fiber/v2"
)

func HandleError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
	})
}

// HandleErrorKind includes the stable error kind so clients can branch
// without parsing the message.
func HandleErrorKind(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Kind:    kind,
		Message: message,
	})
}

// HandleValidationError returns one message per offending field.
func HandleValidationError(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Status:  fiber.StatusBadRequest,
		Kind:    "ValidationFailed",
		Message: "Validation failed",
		Fields:  fields,
	})
}
