package game

import (
	"wintoday/helpers"
	"wintoday/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) CommitBet(c *fiber.Ctx) error {
	var req services.CommitBetRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if req.RoundID == uuid.Nil {
		return helpers.JSONError(c, "ROUND_ID_REQUIRED")
	}
	if req.PlayerName == "" || req.BetType == "" {
		return helpers.JSONError(c, "PLAYER_NAME_AND_BET_TYPE_REQUIRED")
	}

	outcome, err := h.Game.CommitBet(c.UserContext(), req)
	if err != nil {
		return helpers.JSONFromError(c, err)
	}
	return helpers.JSONSuccess(c, "Bet committed", outcome)
}
