package controllers

import (
	"context"
	"errors"
	"time"

	"Backend-Relific-Core/src/middleware"
	"Backend-Relific-Core/src/models"
	"Backend-Relific-Core/src/services/forms"
	"Backend-Relific-Core/src/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func loggedInUserID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	raw, _ := c.Locals("userId").(string)
	id, err := primitive.ObjectIDFromHex(raw)
	return id, err == nil
}

type createFormRequest struct {
	Title            string                   `json:"title" validate:"required"`
	FormSchema       []models.FormPage        `json:"formSchema" validate:"required,min=1"`
	Workflows        []models.Workflow        `json:"workflows"`
	LayoutSelections []models.LayoutSelection `json:"layoutSelections"`
	ColumnsPerPage   bson.M                   `json:"columnsPerPage"`
	IsDraft          bool                     `json:"isDraft"`
	Published        bool                     `json:"published"`
}

// CreateForm godoc
// @Summary Create a form
// @Description Store a new form definition; slug is minted from the title
// @Tags forms
// @Accept json
// @Produce json
// @Param form body createFormRequest true "Form definition"
// @Success 201 {object} models.Form
// @Failure 400 {object} models.ErrorResponse
// @Router /{company}/api/forms [post]
func CreateForm(c *fiber.Ctx) error {
	var req createFormRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input")
	}
	if err := validate.Struct(req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	userID, ok := loggedInUserID(c)
	if !ok {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid user")
	}

	for _, page := range req.FormSchema {
		for _, el := range page.Elements {
			if el.ID == "" || el.Type == "" {
				return utils.HandleError(c, fiber.StatusBadRequest, "Each schema element must have id and type")
			}
		}
	}

	form := models.Form{
		Title:            req.Title,
		FormSchema:       req.FormSchema,
		Workflows:        req.Workflows,
		LayoutSelections: req.LayoutSelections,
		ColumnsPerPage:   req.ColumnsPerPage,
		IsDraft:          req.IsDraft,
		Published:        req.Published,
		CreatedBy:        userID,
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := forms.CreateForm(ctx, middleware.TenantStore(c), &form); err != nil {
		var dup *forms.DuplicateKeyError
		if errors.As(err, &dup) {
			return utils.HandleErrorKind(c, fiber.StatusConflict, "DuplicateKey", dup.Error())
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to create form")
	}

	return c.Status(fiber.StatusCreated).JSON(form)
}

// GetForm godoc
// @Summary Get a form by slug
// @Tags forms
// @Produce json
// @Param slug path string true "Form slug"
// @Success 200 {object} models.Form
// @Failure 404 {object} models.ErrorResponse
// @Router /{company}/api/forms/{slug} [get]
func GetForm(c *fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	form, err := forms.GetFormBySlug(ctx, middleware.TenantStore(c), middleware.TenantName(c), c.Params("slug"))
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "FormNotFound", "Form not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to load form")
	}
	return c.JSON(form)
}

// ListForms godoc
// @Summary List forms
// @Description Forms the user created or that are shared with them
// @Tags forms
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search keyword"
// @Success 200 {object} models.PaginatedResponse
// @Router /{company}/api/forms [get]
func ListForms(c *fiber.Ctx) error {
	userID, ok := loggedInUserID(c)
	if !ok {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid user")
	}

	params := models.DefaultPagination()
	if err := c.QueryParser(&params); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid pagination params")
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, total, err := forms.ListForms(ctx, middleware.TenantStore(c), userID, params)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to list forms")
	}

	return c.JSON(models.NewPaginatedResponse(result, total, params))
}

// UpdateForm godoc
// @Summary Update a form definition
// @Tags forms
// @Accept json
// @Produce json
// @Param slug path string true "Form slug"
// @Success 200 {object} models.Form
// @Failure 404 {object} models.ErrorResponse
// @Router /{company}/api/forms/{slug} [put]
func UpdateForm(c *fiber.Ctx) error {
	var set bson.M
	if err := c.BodyParser(&set); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input")
	}

	ctx, cancel := requestContext()
	defer cancel()

	form, err := forms.UpdateForm(ctx, middleware.TenantStore(c), middleware.TenantName(c), c.Params("slug"), set)
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "FormNotFound", "Form not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to update form")
	}
	return c.JSON(form)
}

// DeleteForm godoc
// @Summary Delete a form
// @Tags forms
// @Param slug path string true "Form slug"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /{company}/api/forms/{slug} [delete]
func DeleteForm(c *fiber.Ctx) error {
	ctx, cancel := requestContext()
	defer cancel()

	err := forms.DeleteForm(ctx, middleware.TenantStore(c), middleware.TenantName(c), c.Params("slug"))
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "FormNotFound", "Form not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to delete form")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type shareFormRequest struct {
	SharedWith []models.SharedWith `json:"sharedWith" validate:"required"`
}

// ShareForm godoc
// @Summary Replace a form's sharing list
// @Tags forms
// @Accept json
// @Param slug path string true "Form slug"
// @Success 200 {object} map[string]interface{}
// @Router /{company}/api/forms/{slug}/share [put]
func ShareForm(c *fiber.Ctx) error {
	var req shareFormRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input")
	}

	ctx, cancel := requestContext()
	defer cancel()

	err := forms.ShareForm(ctx, middleware.TenantStore(c), middleware.TenantName(c), c.Params("slug"), req.SharedWith)
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "FormNotFound", "Form not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to share form")
	}
	return c.JSON(fiber.Map{"shared": true})
}

// ToggleFavorite godoc
// @Summary Toggle the form as a favorite for the current user
// @Tags forms
// @Param slug path string true "Form slug"
// @Success 200 {object} map[string]interface{}
// @Router /{company}/api/forms/{slug}/favorite [post]
func ToggleFavorite(c *fiber.Ctx) error {
	userID, ok := loggedInUserID(c)
	if !ok {
		return utils.HandleError(c, fiber.StatusUnauthorized, "Invalid user")
	}

	ctx, cancel := requestContext()
	defer cancel()

	favorite, err := forms.ToggleFavorite(ctx, middleware.TenantStore(c), c.Params("slug"), userID)
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "FormNotFound", "Form not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to toggle favorite")
	}
	return c.JSON(fiber.Map{"favorite": favorite})
}

type publishFormRequest struct {
	Published bool `json:"published"`
}

// PublishForm godoc
// @Summary Publish or unpublish a form
// @Tags forms
// @Accept json
// @Param slug path string true "Form slug"
// @Success 200 {object} map[string]interface{}
// @Router /{company}/api/forms/{slug}/publish [put]
func PublishForm(c *fiber.Ctx) error {
	var req publishFormRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input")
	}

	ctx, cancel := requestContext()
	defer cancel()

	err := forms.SetPublished(ctx, middleware.TenantStore(c), middleware.TenantName(c), c.Params("slug"), req.Published)
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "FormNotFound", "Form not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to publish form")
	}
	return c.JSON(fiber.Map{"published": req.Published})
}
