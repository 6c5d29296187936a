package routes

import (
	"Backend-Relific-Core/src/controllers"
	"Backend-Relific-Core/src/middleware"

	"github.com/gofiber/fiber/v2"
)

// entryRoutes — submissions against a form
func entryRoutes(router fiber.Router) {
	entries := router.Group("/entries", middleware.AuthJWT)

	entries.Post("/", controllers.CreateEntry)
	entries.Get("/", controllers.ListEntries)
	entries.Get("/:id", controllers.GetEntry)
	entries.Put("/:id", controllers.UpdateEntry)
	entries.Delete("/:id", controllers.DeleteEntry)
	entries.Get("/:id/history/:field", controllers.GetEntryHistory)
}
