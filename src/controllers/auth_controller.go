package controllers

import (
	"errors"

	"Backend-Relific-Core/src/middleware"
	"Backend-Relific-Core/src/models"
	"Backend-Relific-Core/src/services/users"
	"Backend-Relific-Core/src/utils"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login godoc
// @Summary Log in and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /{company}/api/auth/login [post]
func Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input")
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := users.FindByEmail(ctx, middleware.TenantStore(c), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Login failed")
	}

	if !users.VerifyPassword(user.Password, req.Password) {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Login failed")
	}

	return c.JSON(fiber.Map{"token": token, "user": user})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

// Register godoc
// @Summary Create a user in the tenant store
// @Tags auth
// @Accept json
// @Produce json
// @Param user body registerRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /{company}/api/auth/register [post]
func Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input")
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := requestContext()
	defer cancel()

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	if err := users.CreateUser(ctx, middleware.TenantStore(c), &user); err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(user)
}
