package game

import (
	"wintoday/helpers"
	"wintoday/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) SaveSession(c *fiber.Ctx) error {
	var req services.SaveSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.PlayerName == "" {
		return helpers.JSONError(c, "PLAYER_NAME_REQUIRED")
	}

	result, err := h.Game.SaveSession(c.UserContext(), req)
	if err != nil {
		return helpers.JSONFromError(c, err)
	}
	return helpers.JSONSuccess(c, "Session saved", result)
}
