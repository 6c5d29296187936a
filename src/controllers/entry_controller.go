package controllers

import (
	"errors"

	"Backend-Relific-Core/src/middleware"
	"Backend-Relific-Core/src/models"
	"Backend-Relific-Core/src/services/entries"
	"Backend-Relific-Core/src/services/forms"
	"Backend-Relific-Core/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type submitEntryRequest struct {
	Slug           string `json:"slug" validate:"required"`
	ProjectName    string `json:"projectName"`
	Data           bson.M `json:"data" validate:"required"`
	IsDraft        bool   `json:"isDraft"`
	StepNo         int    `json:"stepNo"`
	ApprovalStatus string `json:"approvalStatus"`
	Reason         string `json:"reason"`
}

func handleSubmitError(c *fiber.Ctx, err error) error {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		return utils.HandleValidationError(c, verr.Fields)
	}
	var dup *forms.DuplicateKeyError
	if errors.As(err, &dup) {
		return utils.HandleErrorKind(c, fiber.StatusConflict, "DuplicateKey", dup.Error())
	}
	switch {
	case errors.Is(err, forms.ErrFormNotFound):
		return utils.HandleErrorKind(c, fiber.StatusNotFound, "FormNotFound", "Form not found")
	case errors.Is(err, forms.ErrEntryNotFound):
		return utils.HandleErrorKind(c, fiber.StatusNotFound, "EntryNotFound", "Entry not found")
	case errors.Is(err, forms.ErrWorkflowStepOutOfRange):
		return utils.HandleErrorKind(c, fiber.StatusBadRequest, "WorkflowStepOutOfRange", "Workflow step out of range")
	}
	return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to process submission")
}

// CreateEntry godoc
// @Summary Submit a new entry against a form
// @Description Processes the raw values through the form's compiled shape and evaluates its workflows
// @Tags entries
// @Accept json
// @Produce json
// @Param entry body submitEntryRequest true "Submission"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /{company}/api/entries [post]
func CreateEntry(c *fiber.Ctx) error {
	var req submitEntryRequest
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

	ctx, cancel := requestContext()
	defer cancel()

	doc, err := entries.Submit(ctx, middleware.TenantStore(c), forms.ProcessParams{
		Tenant:      middleware.TenantName(c),
		Slug:        req.Slug,
		ProjectName: req.ProjectName,
		RawData:     req.Data,
		IsDraft:     req.IsDraft,
		UserID:      userID,
	})
	if err != nil {
		return handleSubmitError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// UpdateEntry godoc
// @Summary Update an entry, optionally recording an approval decision
// @Tags entries
// @Accept json
// @Produce json
// @Param id path string true "Entry id"
// @Param entry body submitEntryRequest true "Submission"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /{company}/api/entries/{id} [put]
func UpdateEntry(c *fiber.Ctx) error {
	entryID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid entry id")
	}

	var req submitEntryRequest
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

	ctx, cancel := requestContext()
	defer cancel()

	doc, err := entries.Submit(ctx, middleware.TenantStore(c), forms.ProcessParams{
		Tenant:         middleware.TenantName(c),
		Slug:           req.Slug,
		ProjectName:    req.ProjectName,
		RawData:        req.Data,
		IsDraft:        req.IsDraft,
		UserID:         userID,
		EntryID:        &entryID,
		StepNo:         req.StepNo,
		ApprovalStatus: req.ApprovalStatus,
		Reason:         req.Reason,
	})
	if err != nil {
		return handleSubmitError(c, err)
	}

	return c.JSON(doc)
}

// GetEntry godoc
// @Summary Get one entry
// @Tags entries
// @Produce json
// @Param id path string true "Entry id"
// @Param slug query string true "Form slug"
// @Param project query string false "Project name"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /{company}/api/entries/{id} [get]
func GetEntry(c *fiber.Ctx) error {
	entryID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid entry id")
	}
	slug := c.Query("slug")
	if slug == "" {
		return utils.HandleError(c, fiber.StatusBadRequest, "slug query param is required")
	}

	ctx, cancel := requestContext()
	defer cancel()

	doc, err := entries.GetEntry(ctx, middleware.TenantStore(c), slug, c.Query("project"), entryID)
	if err != nil {
		if errors.Is(err, forms.ErrEntryNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "EntryNotFound", "Entry not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to load entry")
	}
	return c.JSON(doc)
}

// ListEntries godoc
// @Summary List entries for a form
// @Tags entries
// @Produce json
// @Param slug query string true "Form slug"
// @Param project query string false "Project name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.PaginatedResponse
// @Router /{company}/api/entries [get]
func ListEntries(c *fiber.Ctx) error {
	slug := c.Query("slug")
	if slug == "" {
		return utils.HandleError(c, fiber.StatusBadRequest, "slug query param is required")
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

	docs, total, err := entries.ListEntries(ctx, middleware.TenantStore(c), slug, c.Query("project"), params)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to list entries")
	}
	return c.JSON(models.NewPaginatedResponse(docs, total, params))
}

// DeleteEntry godoc
// @Summary Delete one entry
// @Tags entries
// @Param id path string true "Entry id"
// @Param slug query string true "Form slug"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /{company}/api/entries/{id} [delete]
func DeleteEntry(c *fiber.Ctx) error {
	entryID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid entry id")
	}
	slug := c.Query("slug")
	if slug == "" {
		return utils.HandleError(c, fiber.StatusBadRequest, "slug query param is required")
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := entries.DeleteEntry(ctx, middleware.TenantStore(c), slug, c.Query("project"), entryID); err != nil {
		if errors.Is(err, forms.ErrEntryNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "EntryNotFound", "Entry not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to delete entry")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetEntryHistory godoc
// @Summary Load the sub-records referenced by a history field
// @Tags entries
// @Produce json
// @Param id path string true "Entry id"
// @Param field path string true "History field key"
// @Param slug query string true "Form slug"
// @Success 200 {array} map[string]interface{}
// @Router /{company}/api/entries/{id}/history/{field} [get]
func GetEntryHistory(c *fiber.Ctx) error {
	entryID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid entry id")
	}
	slug := c.Query("slug")
	fieldKey := c.Params("field")
	if slug == "" || fieldKey == "" {
		return utils.HandleError(c, fiber.StatusBadRequest, "slug and field are required")
	}

	ctx, cancel := requestContext()
	defer cancel()

	db := middleware.TenantStore(c)
	project := c.Query("project")

	doc, err := entries.GetEntry(ctx, db, slug, project, entryID)
	if err != nil {
		if errors.Is(err, forms.ErrEntryNotFound) {
			return utils.HandleErrorKind(c, fiber.StatusNotFound, "EntryNotFound", "Entry not found")
		}
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to load entry")
	}

	ids := objectIDList(doc[fieldKey])
	if len(ids) == 0 {
		return c.JSON([]bson.M{})
	}

	docs, err := entries.HistoryEntries(ctx, db, slug, project, fieldKey, ids)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to load history entries")
	}
	return c.JSON(docs)
}

func objectIDList(v interface{}) []primitive.ObjectID {
	var items []interface{}
	switch t := v.(type) {
	case primitive.A:
		items = t
	case []interface{}:
		items = t
	default:
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		switch id := it.(type) {
		case primitive.ObjectID:
			ids = append(ids, id)
		case string:
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				ids = append(ids, oid)
			}
		}
	}
	return ids
}
