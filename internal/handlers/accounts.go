package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wizardlabs/leadforms/internal/mailer"
	"github.com/wizardlabs/leadforms/internal/middleware"
	"github.com/wizardlabs/leadforms/internal/services"
	"github.com/wizardlabs/leadforms/internal/utils"
	"gorm.io/gorm"
)

// AccountHandler handles business account routes
type AccountHandler struct {
	DB     *gorm.DB
	Mailer mailer.Sender
}

// List handles GET /api/v1/auth/accounts
// @Summary List accounts
// @Description Paginated account listing (SUPERADMIN only)
// @Tags Accounts
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} services.AccountList
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /auth/accounts [get]
func (h *AccountHandler) List(c *fiber.Ctx) error {
	page, limit := queryPaging(c)
	list, err := services.ListAccounts(h.DB, page, limit)
	if err != nil {
		return serviceError(c, err, "accounts.list")
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

// Create handles POST /api/v1/auth/accounts/create
// @Summary Create an account
// @Description Create a business account with its first admin user (SUPERADMIN only)
// @Tags Accounts
// @Accept json
// @Produce json
// @Param body body services.CreateAccountInput true "Account"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /auth/accounts/create [post]
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	var body services.CreateAccountInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	caller := middleware.CallerIdentity(c)
	account, err := services.CreateAccount(h.DB, h.Mailer, caller.ID, body)
	if err != nil {
		return serviceError(c, err, "accounts.create")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"account": account,
	})
}

// Get handles GET /api/v1/auth/accounts/:accountId
// @Summary Get an account
// @Description Get one account with its users
// @Tags Accounts
// @Produce json
// @Param accountId path string true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/accounts/{accountId} [get]
func (h *AccountHandler) Get(c *fiber.Ctx) error {
	account, err := services.GetAccount(h.DB, c.Params("accountId"))
	if err != nil {
		return serviceError(c, err, "accounts.get")
	}
	return c.Status(fiber.StatusOK).JSON(account)
}

// Delete handles DELETE /api/v1/auth/accounts/:accountId
// @Summary Delete an account
// @Description Delete an account and detach its users (SUPERADMIN only)
// @Tags Accounts
// @Produce json
// @Param accountId path string true "Account ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /auth/accounts/{accountId} [delete]
func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	if err := services.DeleteAccount(h.DB, c.Params("accountId")); err != nil {
		return serviceError(c, err, "accounts.delete")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
