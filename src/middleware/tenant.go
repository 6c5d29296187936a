package middleware

import (
	"errors"
	"strings"

	"Backend-Relific-Core/src/database"
	"Backend-Relific-Core/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// TenantSegment extracts the tenant path segment from a request path.
// Normally the first non-empty segment; the documented "api-root" alias
// shifts it one segment right.
func TenantSegment(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	if parts[0] == "api-root" {
		if len(parts) > 1 {
			return parts[1]
		}
		return ""
	}
	return parts[0]
}

// ResolveTenant resolves the tenant for the request and stores the tenant
// name and its store handle in locals. Must run before any handler that
// touches tenant data.
func ResolveTenant(c *fiber.Ctx) error {
	segment := c.Params("company")
	if segment == "" {
		segment = TenantSegment(c.Path())
	}

	tenant, err := database.ResolveTenant(segment)
	if err != nil {
		return utils.HandleErrorKind(c, fiber.StatusNotFound, "TenantNotFound", "Entity not found")
	}

	db, err := database.TenantDB(c.UserContext(), tenant)
	if err != nil {
		if errors.Is(err, database.ErrTenantNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "TenantNotFound", "Entity not found")
		}
		return utils.HandleErrorKind(c, fiber.StatusServiceUnavailable, "StorageUnavailable", "Storage unavailable, retry later")
	}

	c.Locals("company", tenant)
	c.Locals("db", db)
	return c.Next()
}

// TenantStore pulls the resolved store handle back out of locals.
func TenantStore(c *fiber.Ctx) *mongo.Database {
	db, _ := c.Locals("db").(*mongo.Database)
	return db
}

// TenantName pulls the resolved tenant name back out of locals.
func TenantName(c *fiber.Ctx) string {
	name, _ := c.Locals("company").(string)
	return name
}
