package handlers

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/wizardlabs/leadforms/internal/mailer"
	"github.com/wizardlabs/leadforms/internal/middleware"
	"github.com/wizardlabs/leadforms/internal/services"
	"github.com/wizardlabs/leadforms/internal/storage"
	"github.com/wizardlabs/leadforms/internal/utils"
	"gorm.io/gorm"
)

// ResponseHandler handles form submission and lead listing routes
type ResponseHandler struct {
	DB      *gorm.DB
	Storage storage.Storage
	Mailer  mailer.Sender
}

// Submit handles POST /api/v1/form/:formId/response
// @Summary Submit a form response
// @Description Public submission endpoint, multipart keyed by field ID
// @Tags Responses
// @Accept mpfd
// @Produce json
// @Param formId path string true "Form ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /form/{formId}/response [post]
func (h *ResponseHandler) Submit(c *fiber.Ctx) error {
	mf, err := c.MultipartForm()
	if err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	sub := services.Submission{
		Values: mf.Value,
		Files:  make(map[string][]services.SubmittedFile),
	}
	for fieldID, headers := range mf.File {
		for _, header := range headers {
			header := header
			sub.Files[fieldID] = append(sub.Files[fieldID], services.SubmittedFile{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Open: func() (io.ReadCloser, error) {
					return openHeader(header)
				},
			})
		}
	}

	responseID, err := services.SubmitResponse(c.Context(), h.DB, h.Storage, h.Mailer, c.Params("formId"), sub)
	if err != nil {
		return serviceError(c, err, "responses.submit")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"responseId": responseID,
		"message":    "Response submitted successfully",
	})
}

func openHeader(h *multipart.FileHeader) (io.ReadCloser, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	return f, nil
}

// List handles GET /api/v1/form/:formId/response
// @Summary List form responses
// @Description Per-form lead listing with follow-up state filter
// @Tags Responses
// @Produce json
// @Param formId path string true "Form ID"
// @Param state query string false "all, pending, completed or cancelled"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} services.FormResponses
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /form/{formId}/response [get]
func (h *ResponseHandler) List(c *fiber.Ctx) error {
	caller := middleware.CallerIdentity(c)
	formID := c.Params("formId")

	// Scope to the caller's own forms.
	if _, err := services.GetForm(h.DB, caller.ID, formID); err != nil {
		return serviceError(c, err, "responses.list")
	}

	page, limit := queryPaging(c)
	list, err := services.ListFormResponses(h.DB, formID, c.Query("state"), page, limit)
	if err != nil {
		return serviceError(c, err, "responses.list")
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

// Get handles GET /api/v1/form/:formId/response/:responseId
// @Summary Get a single response
// @Description Get one submission with its answers map
// @Tags Responses
// @Produce json
// @Param formId path string true "Form ID"
// @Param responseId path string true "Response ID"
// @Success 200 {object} services.ResponseDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /form/{formId}/response/{responseId} [get]
func (h *ResponseHandler) Get(c *fiber.Ctx) error {
	caller := middleware.CallerIdentity(c)
	formID := c.Params("formId")

	if _, err := services.GetForm(h.DB, caller.ID, formID); err != nil {
		return serviceError(c, err, "responses.get")
	}

	detail, err := services.GetResponse(h.DB, formID, c.Params("responseId"))
	if err != nil {
		return serviceError(c, err, "responses.get")
	}
	return c.Status(fiber.StatusOK).JSON(detail)
}
