package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wizardlabs/leadforms/internal/logger"
	"github.com/wizardlabs/leadforms/internal/types"
	"github.com/wizardlabs/leadforms/internal/utils"
	"go.uber.org/zap"
)

// serviceError maps a service-layer error onto the JSON error envelope.
// Not-found sentinels become 404, AppErrors keep their code and taxonomy
// type, and anything else is a logged 500.
func serviceError(c *fiber.Ctx, err error, op string) error {
	if errors.Is(err, types.ErrNotFound) {
		return utils.NotFoundResponse(c, err.Error())
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return utils.ErrorResponse(c, appErr.Message, appErr.Code, appErr.Type)
	}

	logger.L().Error("internal error",
		zap.String("op", op),
		zap.Error(err),
	)
	return utils.ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError, op)
}

// queryPaging reads page and limit query parameters with their defaults.
func queryPaging(c *fiber.Ctx) (page, limit int) {
	return c.QueryInt("page", 1), c.QueryInt("limit", 0)
}
