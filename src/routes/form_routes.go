package routes

import (
	"Backend-Relific-Core/src/controllers"
	"Backend-Relific-Core/src/middleware"

	"github.com/gofiber/fiber/v2"
)

// formRoutes — form definition management
func formRoutes(router fiber.Router) {
	forms := router.Group("/forms", middleware.AuthJWT)

	forms.Post("/", controllers.CreateForm)
	forms.Get("/", controllers.ListForms)
	forms.Get("/:slug", controllers.GetForm)
	forms.Put("/:slug", controllers.UpdateForm)
	forms.Patch("/:slug", controllers.UpdateForm)
	forms.Delete("/:slug", controllers.DeleteForm)
	forms.Put("/:slug/share", controllers.ShareForm)
	forms.Post("/:slug/favorite", controllers.ToggleFavorite)
	forms.Put("/:slug/publish", controllers.PublishForm)
}
