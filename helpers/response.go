package helpers

import (
	"errors"

	"wintoday/logger"
	"wintoday/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func JSONError(c *fiber.Ctx, message string) error {
	return JSONErrorStatus(c, fiber.StatusBadRequest, message)
}

func JSONErrorStatus(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"data":    nil,
	})
}

// JSONFromError renders a service error. Business failures keep their
// message; anything else is logged and hidden behind INTERNAL_ERROR.
func JSONFromError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return JSONErrorStatus(c, fiber.StatusUnauthorized, "PLAYER_NOT_REGISTERED")
	case errors.Is(err, services.ErrInvalidArgument):
		return JSONErrorStatus(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		return JSONErrorStatus(c, fiber.StatusConflict, "ROUND_ALREADY_COMMITTED")
	case errors.Is(err, services.ErrInsufficientFunds):
		return JSONErrorStatus(c, fiber.StatusPaymentRequired, "INSUFFICIENT_FUNDS")
	}

	logger.ErrorCtx(c.UserContext(), "❌ request failed",
		zap.String("path", c.Path()),
		zap.String("method", c.Method()),
		zap.Error(err),
	)
	return JSONErrorStatus(c, fiber.StatusInternalServerError, "INTERNAL_ERROR")
}
