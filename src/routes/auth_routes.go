package routes

import (
	"Backend-Relific-Core/src/controllers"

	"github.com/gofiber/fiber/v2"
)

// authRoutes — login/register, no token required
func authRoutes(router fiber.Router) {
	auth := router.Group("/auth")

	auth.Post("/login", controllers.Login) // 🔐 login
	auth.Post("/register", controllers.Register)
}
