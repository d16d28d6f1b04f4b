package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wizardlabs/leadforms/internal/middleware"
	"github.com/wizardlabs/leadforms/internal/services"
	"github.com/wizardlabs/leadforms/internal/utils"
	"gorm.io/gorm"
)

// FollowUpHandler handles lead follow-up tracker routes
type FollowUpHandler struct {
	DB *gorm.DB
}

// Create handles POST /api/v1/followup
// @Summary Record a follow-up
// @Description Append a follow-up event to a lead; blocked once the lead reached a terminal business status
// @Tags FollowUps
// @Accept json
// @Produce json
// @Param body body services.CreateFollowUpInput true "Follow-up"
// @Success 201 {object} models.FollowUp
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /followup [post]
func (h *FollowUpHandler) Create(c *fiber.Ctx) error {
	var body services.CreateFollowUpInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	caller := middleware.CallerIdentity(c)
	followUp, err := services.CreateFollowUp(h.DB, caller.ID, body)
	if err != nil {
		return serviceError(c, err, "followups.create")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"followup": followUp,
	})
}

// List handles GET /api/v1/followup
// @Summary Follow-up feed
// @Description The caller's deduplicated lead feed, one entry per lead
// @Tags FollowUps
// @Produce json
// @Param state query string false "all, pending, completed or cancelled (default pending)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} services.FollowUpFeed
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /followup [get]
func (h *FollowUpHandler) List(c *fiber.Ctx) error {
	caller := middleware.CallerIdentity(c)
	page, limit := queryPaging(c)

	feed, err := services.ListUserFollowUps(h.DB, caller.ID, c.Query("state"), page, limit)
	if err != nil {
		return serviceError(c, err, "followups.list")
	}
	return c.Status(fiber.StatusOK).JSON(feed)
}
