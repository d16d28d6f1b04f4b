package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/wizardlabs/leadforms/internal/middleware"
	"github.com/wizardlabs/leadforms/internal/models"
	"github.com/wizardlabs/leadforms/internal/services"
	"github.com/wizardlabs/leadforms/internal/types"
	"github.com/wizardlabs/leadforms/internal/utils"
	"gorm.io/gorm"
)

// maxFormPayload caps create/update form bodies.
const maxFormPayload = 50 * 1024

// FormHandler handles form builder routes
type FormHandler struct {
	DB *gorm.DB
}

func (h *FormHandler) caller(c *fiber.Ctx) (*models.User, error) {
	id := middleware.CallerIdentity(c)
	var user models.User
	if err := h.DB.First(&user, "id = ?", id.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", types.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// List handles GET /api/v1/form
// @Summary List forms
// @Description List the caller's forms, newest first
// @Tags Forms
// @Produce json
// @Success 200 {array} models.Form
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /form [get]
func (h *FormHandler) List(c *fiber.Ctx) error {
	caller := middleware.CallerIdentity(c)
	forms, err := services.ListForms(h.DB, caller.ID)
	if err != nil {
		return serviceError(c, err, "forms.list")
	}
	return c.Status(fiber.StatusOK).JSON(forms)
}

// Create handles POST /api/v1/form
// @Summary Create a form
// @Description Create a form with its fields
// @Tags Forms
// @Accept json
// @Produce json
// @Param body body services.FormInput true "Form definition"
// @Success 201 {object} models.Form
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Router /form [post]
func (h *FormHandler) Create(c *fiber.Ctx) error {
	if len(c.Body()) > maxFormPayload {
		return utils.ErrorResponse(c, "Payload too large", fiber.StatusRequestEntityTooLarge, "payload")
	}

	var body services.FormInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	owner, err := h.caller(c)
	if err != nil {
		return serviceError(c, err, "forms.create")
	}

	form, err := services.CreateForm(h.DB, owner, body)
	if err != nil {
		return serviceError(c, err, "forms.create")
	}
	return c.Status(fiber.StatusCreated).JSON(form)
}

// Get handles GET /api/v1/form/:formId
// @Summary Get a form
// @Description Get one of the caller's forms with its fields
// @Tags Forms
// @Produce json
// @Param formId path string true "Form ID"
// @Success 200 {object} models.Form
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /form/{formId} [get]
func (h *FormHandler) Get(c *fiber.Ctx) error {
	caller := middleware.CallerIdentity(c)
	form, err := services.GetForm(h.DB, caller.ID, c.Params("formId"))
	if err != nil {
		return serviceError(c, err, "forms.get")
	}
	return c.Status(fiber.StatusOK).JSON(form)
}

// Update handles PATCH /api/v1/form/:formId
// @Summary Update a form
// @Description Update form metadata and reconcile its fields
// @Tags Forms
// @Accept json
// @Produce json
// @Param formId path string true "Form ID"
// @Param body body services.FormInput true "Form definition"
// @Success 200 {object} models.Form
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /form/{formId} [patch]
func (h *FormHandler) Update(c *fiber.Ctx) error {
	if len(c.Body()) > maxFormPayload {
		return utils.ErrorResponse(c, "Payload too large", fiber.StatusRequestEntityTooLarge, "payload")
	}

	var body services.FormInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	caller := middleware.CallerIdentity(c)
	form, err := services.UpdateForm(h.DB, caller.ID, c.Params("formId"), body)
	if err != nil {
		return serviceError(c, err, "forms.update")
	}
	return c.Status(fiber.StatusOK).JSON(form)
}

// Delete handles DELETE /api/v1/form/:formId
// @Summary Delete a form
// @Description Delete one of the caller's forms
// @Tags Forms
// @Produce json
// @Param formId path string true "Form ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /form/{formId} [delete]
func (h *FormHandler) Delete(c *fiber.Ctx) error {
	caller := middleware.CallerIdentity(c)
	if err := services.DeleteForm(h.DB, caller.ID, c.Params("formId")); err != nil {
		return serviceError(c, err, "forms.delete")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
