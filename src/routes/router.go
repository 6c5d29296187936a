package routes

import (
	"Backend-Relific-Core/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func InitRoutes(app *fiber.App) {
	// Health probe, outside any tenant scope
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("✅ API is running...")
	})

	// Everything else lives under a tenant prefix; the first path
	// segment picks the store the request operates on.
	tenant := app.Group("/:company/api", middleware.ResolveTenant)

	authRoutes(tenant)
	formRoutes(tenant)
	entryRoutes(tenant)
}
